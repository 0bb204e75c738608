package driver

import (
	"encoding/json"
	"fmt"
	"io"

	"gtrans/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// WriteTimings prints t as a table or, with asJSON, as one JSON object.
func WriteTimings(w io.Writer, kind, path string, t *observ.Timer, asJSON bool) error {
	if t == nil {
		return nil
	}
	if !asJSON {
		_, err := io.WriteString(w, t.Summary())
		return err
	}
	report := t.Report()
	data, err := json.Marshal(timingPayload{
		Kind:    kind,
		Path:    path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
