// Package subjects holds the static mapping from an academic subject to
// its Google calendar and instructor roster. The registry is immutable
// after load; every API request validates its subject key here before any
// calendar call is made.
package subjects

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Subject binds one academic area to one external calendar.
type Subject struct {
	Key         string   `yaml:"key" json:"key"`
	DisplayName string   `yaml:"display_name" json:"displayName"`
	CalendarID  string   `yaml:"calendar_id" json:"calendarId"`
	Professors  []string `yaml:"professors" json:"professors"`
	Color       string   `yaml:"color" json:"color"`
	Icon        string   `yaml:"icon" json:"icon"`
	Description string   `yaml:"description" json:"description"`
}

// Registry is a read-only subject lookup table.
type Registry struct {
	order     []string
	bySubject map[string]Subject
}

// Defaults returns the built-in registry used when no subjects file is
// configured.
func Defaults() *Registry {
	r, err := New([]Subject{
		{
			Key:         "Matemáticas",
			DisplayName: "Matemáticas",
			CalendarID:  "c_889b9a5030efdc76613f923fb10949162241a9b0aa67d5faa106a33e6ccc0f91@group.calendar.google.com",
			Professors: []string{
				"luisdavidgutierres3110@gmail.com",
				"vivianarincon.seamosgenios@gmail.com",
				"sara.seamosgenios@gmail.com",
			},
			Color:       "#2196F3",
			Icon:        "🧮",
			Description: "Álgebra, geometría, cálculo y más",
		},
		{
			Key:         "LecturaCrítica",
			DisplayName: "Lectura Crítica",
			CalendarID:  "c_c750f24d23b5577d8d98431fec3650fb54321aa59ab92599d144f97ed8ed4375@group.calendar.google.com",
			Professors:  []string{},
			Color:       "#F44336",
			Icon:        "📖",
			Description: "Comprensión lectora y análisis de textos",
		},
		{
			Key:         "Sociales",
			DisplayName: "Ciencias Sociales",
			CalendarID:  "c_dfc2f04bbfa771681bda44a5130e026dcc60f02ab58ff6a2631bbfabbcb9fc0d@group.calendar.google.com",
			Professors: []string{
				"carlosmurillo.seamosgenios@gmail.com",
				"davidleandrocard60@gmail.com",
			},
			Color:       "#FF9800",
			Icon:        "🌍",
			Description: "Historia, geografía y ciudadanía",
		},
		{
			Key:         "Naturales",
			DisplayName: "Ciencias Naturales",
			CalendarID:  "c_10dd3d184353bef3e9468d6441910ae42a9eeba0bda6d36ada5350e3c54cda0c@group.calendar.google.com",
			Professors: []string{
				"joselondono.edu.seamosgenios@gmail.com",
				"danielcuspoca.edu.seamosgenios@gmail.com",
				"jesus.seamosgenios@gmail.com",
			},
			Color:       "#4CAF50",
			Icon:        "🌳",
			Description: "Biología, química y física",
		},
		{
			Key:         "Inglés",
			DisplayName: "Inglés",
			CalendarID:  "c_18cc46270ff32c851d2b731c3a74162d0ee0fb8e60d071608a6cce354cd41c3c@group.calendar.google.com",
			Professors: []string{
				"vivianarincon.seamosgenios@gmail.com",
				"sara.seamosgenios@gmail.com",
			},
			Color:       "#9C27B0",
			Icon:        "🌐",
			Description: "Gramática, vocabulario y comprensión",
		},
	})
	if err != nil {
		// Built-in data is validated by tests; this is unreachable.
		panic(err)
	}
	return r
}

// New builds a registry from an explicit subject list.
func New(list []Subject) (*Registry, error) {
	r := &Registry{bySubject: make(map[string]Subject, len(list))}
	for _, s := range list {
		if s.Key == "" {
			return nil, fmt.Errorf("subject with empty key")
		}
		if s.CalendarID == "" {
			return nil, fmt.Errorf("subject %q has no calendar_id", s.Key)
		}
		if _, dup := r.bySubject[s.Key]; dup {
			return nil, fmt.Errorf("duplicate subject %q", s.Key)
		}
		r.bySubject[s.Key] = s
		r.order = append(r.order, s.Key)
	}
	return r, nil
}

// LoadFile reads a YAML subjects file and returns the registry it defines.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read subjects file: %w", err)
	}

	var doc struct {
		Subjects []Subject `yaml:"subjects"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unable to parse subjects file: %w", err)
	}
	if len(doc.Subjects) == 0 {
		return nil, fmt.Errorf("subjects file %s defines no subjects", path)
	}

	return New(doc.Subjects)
}

// Lookup returns the subject for the given key.
func (r *Registry) Lookup(key string) (Subject, bool) {
	s, ok := r.bySubject[key]
	return s, ok
}

// All returns every subject in declaration order.
func (r *Registry) All() []Subject {
	out := make([]Subject, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.bySubject[key])
	}
	return out
}
