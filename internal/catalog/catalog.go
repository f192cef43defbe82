package catalog

import (
	"fmt"
	"slices"
)

// Catalog is the immutable lesson tree plus its flattened total order.
// Construct it with New, Parse or Default.
type Catalog struct {
	roadmaps []Roadmap
	order    []Lesson
	position map[string]int
	module   map[string]string
}

// New indexes roadmaps. It fails when a lesson id is empty or appears more
// than once, or when a quiz cannot be passed.
func New(roadmaps []Roadmap) (*Catalog, error) {
	c := &Catalog{
		roadmaps: roadmaps,
		position: make(map[string]int),
		module:   make(map[string]string),
	}

	for _, rm := range roadmaps {
		for _, mod := range rm.Modules {
			for _, l := range mod.Lessons {
				if l.ID == "" {
					return nil, fmt.Errorf("lesson %q in module %q has no id", l.Title, mod.Title)
				}
				if _, dup := c.position[l.ID]; dup {
					return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
				}
				if err := validateQuiz(l); err != nil {
					return nil, err
				}
				c.position[l.ID] = len(c.order)
				c.module[l.ID] = mod.Title
				c.order = append(c.order, l)
			}
		}
	}

	if len(c.order) == 0 {
		return nil, fmt.Errorf("catalog has no lessons")
	}
	return c, nil
}

func validateQuiz(l Lesson) error {
	if l.Quiz == nil {
		return nil
	}
	q := l.Quiz
	if q.PassScore < 1 || q.PassScore > len(q.Questions) {
		return fmt.Errorf("lesson %q: passScore %d outside 1..%d", l.ID, q.PassScore, len(q.Questions))
	}
	for i, question := range q.Questions {
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			return fmt.Errorf("lesson %q: question %d correctIndex %d outside options", l.ID, i+1, question.CorrectIndex)
		}
	}
	return nil
}

// Roadmaps returns the catalog tree.
func (c *Catalog) Roadmaps() []Roadmap {
	return slices.Clone(c.roadmaps)
}

// Flatten returns every lesson in roadmap, module, then lesson order.
func (c *Catalog) Flatten() []Lesson {
	return slices.Clone(c.order)
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	return len(c.order)
}

// At returns the lesson at flattened position i.
func (c *Catalog) At(i int) (Lesson, bool) {
	if i < 0 || i >= len(c.order) {
		return Lesson{}, false
	}
	return c.order[i], true
}

// Position returns the flattened index of id.
func (c *Catalog) Position(id string) (int, bool) {
	i, ok := c.position[id]
	return i, ok
}

// FindByID looks up a lesson. Unknown ids report false.
func (c *Catalog) FindByID(id string) (Lesson, bool) {
	i, ok := c.position[id]
	if !ok {
		return Lesson{}, false
	}
	return c.order[i], true
}

// ModuleTitle returns the title of the module containing id.
func (c *Catalog) ModuleTitle(id string) string {
	return c.module[id]
}

// Adjacent returns the previous and next lessons in flattened order. Either
// is nil at a boundary; both are nil for an unknown id.
func (c *Catalog) Adjacent(id string) (prev, next *Lesson) {
	i, ok := c.position[id]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		p := c.order[i-1]
		prev = &p
	}
	if i < len(c.order)-1 {
		n := c.order[i+1]
		next = &n
	}
	return prev, next
}
