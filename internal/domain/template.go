package domain

type Template struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	ReportGroup    string   `json:"report_group"`
	Parameters     []string `json:"parameters"`
	AdditionalInfo string   `json:"additionalInfo"`
	RoomID         string   `json:"roomId"`
	RoomName       string   `json:"roomName"`
}

type Group struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

const (
	MaxParameters     = 12
	MaxReportNameLen  = 20
	DefaultRangeMin   = 18
	DefaultRangeMax   = 25
	emsPrefix         = "EMS_NEW_"
	additionalInfoSep = ","
)

// AdditionalInfoOptions are the aggregate selectors a template can carry.
var AdditionalInfoOptions = []string{"MAX", "AVG", "MIN"}
