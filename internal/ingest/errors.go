package ingest

import "fmt"

// PartialError reports a failed create in an ingestion chain. Rows created
// before the failure are kept; Created counts them for the server log.
type PartialError struct {
	Step    string
	Created int
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("ingestion failed at %s after %d rows: %v", e.Step, e.Created, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }
