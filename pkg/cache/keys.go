package cache

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies an evaluation result.
	ResultKey(arcsHash, opsHash string, opts ResultKeyOpts) string
	// CheckKey identifies a validation report.
	CheckKey(arcsHash, opsHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds the options that change a result for identical input.
type ResultKeyOpts struct {
	Duplicates string `json:"duplicates"`
}

// DefaultKeyer builds keys of the form "kind:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(arcsHash, opsHash string, opts ResultKeyOpts) string {
	return hashKey("result", arcsHash, opsHash, opts)
}

// CheckKey implements [Keyer].
func (DefaultKeyer) CheckKey(arcsHash, opsHash string, opts ResultKeyOpts) string {
	return hashKey("check", arcsHash, opsHash, opts)
}
