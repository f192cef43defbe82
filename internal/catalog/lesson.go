package catalog

// Resource is an external link shown alongside a lesson.
type Resource struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Question is a single multiple-choice quiz question.
type Question struct {
	Question     string   `yaml:"question" json:"question"`
	Options      []string `yaml:"options" json:"options"`
	CorrectIndex int      `yaml:"correctIndex" json:"-"`
}

// Quiz gates completion of a lesson behind a minimum number of correct
// answers.
type Quiz struct {
	PassScore int        `yaml:"passScore" json:"passScore"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Score counts the answers that match the stored correct index. Missing
// trailing answers count as wrong; extra answers are ignored.
func (q *Quiz) Score(answers []int) int {
	score := 0
	for i, question := range q.Questions {
		if i < len(answers) && answers[i] == question.CorrectIndex {
			score++
		}
	}
	return score
}

// Lesson is a single node in the curriculum. Everything except ID and the
// quiz is display data and never influences progression.
type Lesson struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	ContentFile string     `yaml:"contentFile" json:"contentFile"`
	Quiz        *Quiz      `yaml:"quiz,omitempty" json:"quiz,omitempty"`
	Debugging   []string   `yaml:"debugging,omitempty" json:"debugging,omitempty"`
	Failure     []string   `yaml:"failure,omitempty" json:"failure,omitempty"`
	Playground  string     `yaml:"playground,omitempty" json:"playground,omitempty"`
	Resources   []Resource `yaml:"resources,omitempty" json:"resources,omitempty"`
}

// HasQuiz reports whether completing the lesson goes through a quiz.
func (l Lesson) HasQuiz() bool {
	return l.Quiz != nil && len(l.Quiz.Questions) > 0
}

// Module is an ordered group of lessons.
type Module struct {
	Title   string   `yaml:"title" json:"title"`
	Lessons []Lesson `yaml:"lessons" json:"lessons"`
}

// Roadmap is an ordered group of modules.
type Roadmap struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Modules     []Module `yaml:"modules" json:"modules"`
}
