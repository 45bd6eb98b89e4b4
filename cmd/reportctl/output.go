package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"reports-ui/internal/domain"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

type parameterView struct {
	Name string   `yaml:"name" json:"name"`
	Min  *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max  *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Unit string   `yaml:"unit,omitempty" json:"unit,omitempty"`
}

type templateView struct {
	ID             int64           `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	Group          string          `yaml:"group" json:"group"`
	Parameters     []parameterView `yaml:"parameters" json:"parameters"`
	AdditionalInfo []string        `yaml:"additional_info" json:"additional_info"`
	RoomID         string          `yaml:"room_id,omitempty" json:"room_id,omitempty"`
	RoomName       string          `yaml:"room_name,omitempty" json:"room_name,omitempty"`
}

func viewTemplate(t domain.Template) templateView {
	v := templateView{
		ID:             t.ID,
		Name:           t.Name,
		Group:          t.ReportGroup,
		AdditionalInfo: domain.SplitAdditionalInfo(t.AdditionalInfo),
		RoomID:         t.RoomID,
		RoomName:       t.RoomName,
	}

	for _, p := range t.Parameters {
		name, r := domain.ParseParameter(p)
		pv := parameterView{Name: domain.DisplayName(name)}
		if r != nil {
			pv.Min, pv.Max, pv.Unit = r.Min, r.Max, r.Unit
		}
		v.Parameters = append(v.Parameters, pv)
	}

	return v
}

func (p parameterView) String() string {
	if p.Min == nil || p.Max == nil {
		return p.Name
	}

	s := fmt.Sprintf("%s [%g..%g", p.Name, *p.Min, *p.Max)
	if p.Unit != "" {
		s += " " + p.Unit
	}
	return s + "]"
}

// write encodes v as YAML or JSON.
func write(out io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTemplates(out io.Writer, format string, templates []domain.Template) error {
	views := make([]templateView, 0, len(templates))
	for _, t := range templates {
		views = append(views, viewTemplate(t))
	}

	if format != formatTable {
		return write(out, format, views)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGROUP\tPARAMETERS\tINFO")
	for _, v := range views {
		params := make([]string, 0, len(v.Parameters))
		for _, p := range v.Parameters {
			params = append(params, p.String())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Group, strings.Join(params, ", "), strings.Join(v.AdditionalInfo, ","))
	}
	return tw.Flush()
}
