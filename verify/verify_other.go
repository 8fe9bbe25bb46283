//go:build !windows

package verify

// Context is a placeholder on platforms without a trust engine binding;
// it is never constructed because verify always fails first.
type Context struct{}

func (v *Verifier) verify() (*Context, error) {
	return nil, ErrUnsupported
}

func processImagePath(pid uint32) (string, error) {
	return "", ErrUnsupported
}

// Close releases nothing on this platform.
func (c *Context) Close() error { return nil }

// SubjectName returns an empty Name on this platform.
func (c *Context) SubjectName() Name { return Name{} }

// IssuerName returns an empty Name on this platform.
func (c *Context) IssuerName() Name { return Name{} }

// Serial returns an empty string on this platform.
func (c *Context) Serial() string { return "" }

// SHA1Thumbprint returns an empty string on this platform.
func (c *Context) SHA1Thumbprint() string { return "" }

// SHA256Thumbprint returns an empty string on this platform.
func (c *Context) SHA256Thumbprint() string { return "" }
