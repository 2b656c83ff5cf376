package model

// DefaultPrimaryKey is used when introspection finds no declared primary key.
const DefaultPrimaryKey = "id"

// TableDescriptor describes a single table as seen by the generator. It is
// built fresh from the server for every table and never mutated afterwards.
type TableDescriptor struct {
	Name       string   `json:"name" yaml:"name"`
	Columns    []string `json:"columns" yaml:"columns"` // server-reported order
	PrimaryKey string   `json:"primary_key" yaml:"primary_key"`
}

// ModelFile is a rendered model class and the path it is written to.
type ModelFile struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
}
