package pipeline

// DatabaseResult is the outcome of one database. Tables and Files list what
// was generated before any error, in processing order.
type DatabaseResult struct {
	Name   string
	Tables []string
	Files  []string
	Err    *DatabaseError
}

// Report collects the per-database results of a run.
type Report struct {
	Databases []DatabaseResult
}

// Failed returns the results that ended in an error.
func (r *Report) Failed() []DatabaseResult {
	var out []DatabaseResult
	for _, d := range r.Databases {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// FileCount returns the number of model files produced across all
// databases.
func (r *Report) FileCount() int {
	n := 0
	for _, d := range r.Databases {
		n += len(d.Files)
	}
	return n
}
