// Package roles holds the immutable catalogue of positional roles and named role presets
package roles

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/myusername/fm-scout/pkg/models"
)

//go:embed data/roles.json
var embeddedRoles []byte

// Catalogue is a read-only set of roles. It is built once and shared freely between goroutines.
type Catalogue struct {
	roles  []models.Role
	byCode map[string]int
}

// LoadEmbedded builds the catalogue bundled with the binary
func LoadEmbedded() (*Catalogue, error) {
	return Load(bytes.NewReader(embeddedRoles))
}

// MustLoadEmbedded is LoadEmbedded for process start-up, where a broken bundle is fatal
func MustLoadEmbedded() *Catalogue {
	cat, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded roles.json: %v", err))
	}
	return cat
}

// LoadFile builds a catalogue from a roles JSON file on disk
func LoadFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roles file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a JSON array of role records
func Load(r io.Reader) (*Catalogue, error) {
	var list []models.Role
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}
	return New(list), nil
}

// New builds a catalogue from roles. The slice is copied. When codes repeat, lookups by
// code resolve to the first occurrence.
func New(list []models.Role) *Catalogue {
	c := &Catalogue{
		roles:  make([]models.Role, len(list)),
		byCode: make(map[string]int, len(list)),
	}
	copy(c.roles, list)
	for i, role := range c.roles {
		if _, seen := c.byCode[role.Code]; !seen {
			c.byCode[role.Code] = i
		}
	}
	return c
}

// All returns a snapshot of every role in catalogue order
func (c *Catalogue) All() []models.Role {
	out := make([]models.Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// Len returns the number of roles
func (c *Catalogue) Len() int {
	return len(c.roles)
}

// ByCode looks a role up by exact code
func (c *Catalogue) ByCode(code string) (models.Role, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return models.Role{}, false
	}
	return c.roles[i], true
}

// ByDuty returns the roles whose display name contains duty, e.g. "Support"
func (c *Catalogue) ByDuty(duty string) []models.Role {
	out := []models.Role{}
	for _, role := range c.roles {
		if strings.Contains(role.Name, duty) {
			out = append(out, role)
		}
	}
	return out
}

// Select returns the known roles among codes, in the order requested. Unknown codes are skipped.
func (c *Catalogue) Select(codes []string) []models.Role {
	out := make([]models.Role, 0, len(codes))
	for _, code := range codes {
		if role, ok := c.ByCode(code); ok {
			out = append(out, role)
		}
	}
	return out
}

// Codes returns every role code in catalogue order
func (c *Catalogue) Codes() []string {
	codes := make([]string, 0, len(c.roles))
	for _, role := range c.roles {
		codes = append(codes, role.Code)
	}
	return codes
}

// Each calls fn for every role in catalogue order without copying the catalogue
func (c *Catalogue) Each(fn func(models.Role)) {
	for _, role := range c.roles {
		fn(role)
	}
}
