package builder

import "reports-ui/internal/domain"

// Draft is the whole form as a browser submits it in one request.
type Draft struct {
	ReportName     string           `json:"report_name" yaml:"report_name"`
	GroupName      string           `json:"group_name" yaml:"group_name"`
	Parameters     []DraftParameter `json:"parameters" yaml:"parameters"`
	AdditionalInfo []string         `json:"additional_info" yaml:"additional_info"`
	RoomID         string           `json:"room_id" yaml:"room_id"`
	RoomName       string           `json:"room_name" yaml:"room_name"`
}

type DraftParameter struct {
	Name     string   `json:"name" yaml:"name"`
	AddRange bool     `json:"add_range" yaml:"add_range"`
	Min      *float64 `json:"min" yaml:"min"`
	Max      *float64 `json:"max" yaml:"max"`
	Unit     string   `json:"unit" yaml:"unit"`
}

// Apply replays d onto the form the way a user would fill it in. It
// reports false when some parameters were refused by the selection cap;
// the form then stays invalid until it is reset.
func (b *Builder) Apply(d Draft) bool {
	b.Reset()

	b.ReportName = d.ReportName
	b.GroupName = d.GroupName
	b.RoomID = d.RoomID
	b.RoomName = d.RoomName

	accepted := true
	for _, p := range d.Parameters {
		if !b.ToggleParameter(p.Name, true) {
			b.dropped = append(b.dropped, p.Name)
			accepted = false
			continue
		}

		min, max := p.Min, p.Max
		if !p.AddRange && min == nil && max == nil {
			def := domain.DefaultRange()
			min, max = def.Min, def.Max
		}
		b.SetRange(p.Name, min, max, p.AddRange, p.Unit)
	}

	for _, tag := range d.AdditionalInfo {
		b.ToggleAdditionalInfo(tag, true)
	}

	return accepted
}

// RangeErrors lists the range annotations of the selected parameters that
// currently carry an error.
func (b *Builder) RangeErrors() map[string]domain.ParameterRange {
	out := make(map[string]domain.ParameterRange)
	for _, p := range b.selected {
		if r := b.ranges[p]; r != nil && (r.RangeError != "" || r.UnitError != "") {
			out[p] = *r
		}
	}
	return out
}
