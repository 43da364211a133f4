package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed data/seed.schema.json
var seedSchema []byte

//go:embed data/seed.yaml
var defaultSeed []byte

var schema = func() *jsonschema.Schema {
	compiled, err := compileSchema("seed.schema.json", seedSchema)
	if err != nil {
		panic(err)
	}
	return compiled
}()

var ErrSeedEmpty = errors.New("fixtures: seed document is empty")

// Seed is the YAML fixture document.
type Seed struct {
	States        []StateSeed  `yaml:"states" json:"states,omitempty"`
	People        []PersonSeed `yaml:"people" json:"people,omitempty"`
	Churches      []ChurchSeed `yaml:"churches" json:"churches,omitempty"`
	OfferingTypes []TypeSeed   `yaml:"offering_types" json:"offering_types,omitempty"`
}

type StateSeed struct {
	ID     int64      `yaml:"id" json:"id"`
	Name   string     `yaml:"name" json:"name"`
	Cities []CitySeed `yaml:"cities" json:"cities,omitempty"`
}

type CitySeed struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// PersonSeed optionally names the church the person belongs to.
type PersonSeed struct {
	FirstName string `yaml:"first_name" json:"first_name"`
	LastName  string `yaml:"last_name" json:"last_name"`
	Email     string `yaml:"email" json:"email"`
	Phone     string `yaml:"phone" json:"phone,omitempty"`
	Role      string `yaml:"role" json:"role,omitempty"`
	Church    string `yaml:"church" json:"church,omitempty"`
}

// ChurchSeed references its pastor by email.
type ChurchSeed struct {
	Name           string   `yaml:"name" json:"name"`
	Email          string   `yaml:"email" json:"email,omitempty"`
	Phone          string   `yaml:"phone" json:"phone,omitempty"`
	Address        string   `yaml:"address" json:"address,omitempty"`
	FoundationDate string   `yaml:"foundation_date" json:"foundation_date,omitempty"`
	Pastor         string   `yaml:"pastor" json:"pastor,omitempty"`
	StateID        int64    `yaml:"state_id" json:"state_id,omitempty"`
	CityID         int64    `yaml:"city_id" json:"city_id,omitempty"`
	Latitude       *float64 `yaml:"latitude" json:"latitude,omitempty"`
	Longitude      *float64 `yaml:"longitude" json:"longitude,omitempty"`
}

type TypeSeed struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Default returns the bundled seed.
func Default() (Seed, error) {
	return Parse(defaultSeed)
}

// ReadFile parses the seed stored at path.
func ReadFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Read parses a seed from r.
func Read(r io.Reader) (Seed, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Seed{}, fmt.Errorf("fixtures: read seed: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML against the seed schema and decodes it.
func Parse(raw []byte) (Seed, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return Seed{}, ErrSeedEmpty
	}
	var document any
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return Seed{}, fmt.Errorf("fixtures: decode yaml: %w", err)
	}
	if document == nil {
		return Seed{}, ErrSeedEmpty
	}
	if err := checkSchema(schema, document); err != nil {
		return Seed{}, err
	}

	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("fixtures: decode seed: %w", err)
	}
	for _, church := range seed.Churches {
		if _, err := church.foundationDate(); err != nil {
			return Seed{}, err
		}
	}
	return seed, nil
}

func (c ChurchSeed) foundationDate() (*time.Time, error) {
	value := strings.TrimSpace(c.FoundationDate)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("fixtures: church %q foundation_date: %w", c.Name, err)
	}
	return &date, nil
}
