package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
)

const sampleConfig = `
[[signers]]
path = 'C:\Program Files\Example\agent.exe'
organization = "Example Corp"
sha1_thumbprint = "d8fb0cc66a08061b42d46d03546f0d42cbc49b7c"

[[signers]]
path = 'C:\Windows\explorer.exe'
organization = "Microsoft Corporation"
`

func TestDecodeConfig(t *testing.T) {
	var c Config
	_, err := toml.Decode(sampleConfig, &c)
	assert.NoError(t, err)
	assert.Len(t, c.Signers, 2)
	assert.Equal(t, "Example Corp", c.Signers[0].Organization)
	assert.Equal(t, "d8fb0cc66a08061b42d46d03546f0d42cbc49b7c", c.Signers[0].SHA1Thumbprint)
	assert.NoError(t, c.ValidateFields())
}

func TestValidateFieldsMissingPath(t *testing.T) {
	c := Config{Signers: []Signer{{Organization: "Example Corp"}}}
	assert.Error(t, c.ValidateFields())
}

func TestValidateFieldsBadThumbprint(t *testing.T) {
	c := Config{Signers: []Signer{{
		Path:           `C:\x.exe`,
		SHA1Thumbprint: "not hex at all",
	}}}
	assert.Error(t, c.ValidateFields())
}

func TestForPath(t *testing.T) {
	var c Config
	_, err := toml.Decode(sampleConfig, &c)
	assert.NoError(t, err)

	s, ok := c.ForPath(`c:\program files\example\AGENT.EXE`)
	assert.True(t, ok)
	assert.Equal(t, "Example Corp", s.Organization)

	_, ok = c.ForPath(`C:\Program Files\Other\agent.exe`)
	assert.False(t, ok)
}
