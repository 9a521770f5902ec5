// Package categories holds the industry taxonomy used by the category
// selector. The taxonomy is data: an ordered list of groups read from YAML.
package categories

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"findash/pkg/contracts/domain"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// DefaultCustomSelection is how many companies the custom group preselects.
const DefaultCustomSelection = 3

// ErrUnknownCategory is returned for a group id that is not in the taxonomy.
var ErrUnknownCategory = errors.New("unknown category")

// Taxonomy is an immutable, ordered set of category groups.
type Taxonomy struct {
	groups        []domain.CategoryGroup
	byID          map[string]int
	customDefault int
}

type taxonomyFile struct {
	Groups []domain.CategoryGroup `yaml:"groups" validate:"required,min=1,dive"`
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

// Load reads a taxonomy file. An empty path selects the built-in taxonomy.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates taxonomy YAML.
func Parse(data []byte) (*Taxonomy, error) {
	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("validate taxonomy: %w", err)
	}
	return New(file.Groups)
}

// New builds a taxonomy from groups in menu order.
func New(groups []domain.CategoryGroup) (*Taxonomy, error) {
	t := &Taxonomy{
		groups:        make([]domain.CategoryGroup, len(groups)),
		byID:          make(map[string]int, len(groups)),
		customDefault: DefaultCustomSelection,
	}
	for i, g := range groups {
		if _, dup := t.byID[g.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", g.ID)
		}
		if g.Custom && len(g.Members) > 0 {
			return nil, fmt.Errorf("custom category %q must not list members", g.ID)
		}
		g.Members = append([]string(nil), g.Members...)
		t.groups[i] = g
		t.byID[g.ID] = i
	}
	return t, nil
}

// WithCustomDefault returns a copy whose custom group preselects n companies.
func (t *Taxonomy) WithCustomDefault(n int) *Taxonomy {
	if n < 0 {
		n = 0
	}
	cp := *t
	cp.customDefault = n
	return &cp
}

// Groups returns the groups in menu order.
func (t *Taxonomy) Groups() []domain.CategoryGroup {
	out := make([]domain.CategoryGroup, len(t.groups))
	copy(out, t.groups)
	return out
}

// DefaultID is the id of the first group.
func (t *Taxonomy) DefaultID() string {
	if len(t.groups) == 0 {
		return ""
	}
	return t.groups[0].ID
}

// Group looks up a group by id, or by its display label.
func (t *Taxonomy) Group(id string) (domain.CategoryGroup, error) {
	i, ok := t.byID[id]
	if !ok {
		for j, g := range t.groups {
			if strings.EqualFold(g.Label, id) {
				return t.groups[j], nil
			}
		}
		return domain.CategoryGroup{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return t.groups[i], nil
}

// Choice is the selectable company list of a group and its preselection.
type Choice struct {
	Category string   `json:"category"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Defaults []string `json:"defaults"`
}

// Options computes the company choice for a group against the companies
// present in the data. A custom group offers every available company,
// sorted, and preselects the first few. Any other group offers its
// members that are present, in member order, all preselected.
func (t *Taxonomy) Options(id string, available []string) (Choice, error) {
	g, err := t.Group(id)
	if err != nil {
		return Choice{}, err
	}

	choice := Choice{Category: g.ID, Label: g.Label}
	if g.Custom {
		opts := append([]string(nil), available...)
		sort.Strings(opts)
		n := t.customDefault
		if n > len(opts) {
			n = len(opts)
		}
		choice.Options = opts
		choice.Defaults = append([]string(nil), opts[:n]...)
		return choice, nil
	}

	present := make(map[string]struct{}, len(available))
	for _, c := range available {
		present[c] = struct{}{}
	}
	opts := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if _, ok := present[m]; ok {
			opts = append(opts, m)
		}
	}
	choice.Options = opts
	choice.Defaults = append([]string(nil), opts...)
	return choice, nil
}

// Resolve turns a user's company choice into the selection list. When the
// user has not chosen, the defaults apply. Otherwise requested names that
// are valid options are kept in request order without repeats.
func (c Choice) Resolve(requested []string, explicit bool) []string {
	if !explicit {
		return append([]string(nil), c.Defaults...)
	}
	valid := make(map[string]struct{}, len(c.Options))
	for _, o := range c.Options {
		valid[o] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, r := range requested {
		if _, ok := valid[r]; !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
