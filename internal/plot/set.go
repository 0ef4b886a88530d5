package plot

import (
	"fmt"
	"os"
	"path/filepath"
)

// Options sizes every chart of a set.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 900
	}
	if h <= 0 {
		h = 600
	}
	return w, h
}

// Chart is one rendered PNG.
type Chart struct {
	Name  string
	Title string
	PNG   []byte
}

// Set is an ordered collection of charts produced by one run.
type Set struct {
	Charts []Chart
}

func (s *Set) add(name, title string, png []byte) {
	s.Charts = append(s.Charts, Chart{Name: name, Title: title, PNG: png})
}

func (s *Set) Get(name string) ([]byte, bool) {
	for _, c := range s.Charts {
		if c.Name == name {
			return c.PNG, true
		}
	}
	return nil, false
}

func (s *Set) Names() []string {
	out := make([]string, len(s.Charts))
	for i, c := range s.Charts {
		out[i] = c.Name
	}
	return out
}

// Save writes every chart to dir as <prefix>_<name>.png and returns the paths.
func (s *Set) Save(dir, prefix string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(s.Charts))
	for _, c := range s.Charts {
		p := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, c.Name))
		if err := os.WriteFile(p, c.PNG, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
