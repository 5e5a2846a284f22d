package generate

import (
	"fmt"
	"strings"

	"github.com/writgo/theorie/internal/ai"
)

const (
	defaultLessonCount   = 3
	minLessonCount       = 1
	maxLessonCount       = 10
	defaultQuestionCount = 5
	minQuestionCount     = 1
	maxQuestionCount     = 20
	bundleQuizQuestions  = 10
	defaultCourseTitle   = "Theorie Cursus"
)

// CurriculumRequest asks for a chapter outline.
type CurriculumRequest struct {
	Prompt      string `json:"prompt"`
	CourseTitle string `json:"courseTitle,omitempty"`
}

// LessonContentRequest asks for one Markdown lesson body.
type LessonContentRequest struct {
	Topic        string `json:"topic"`
	ChapterTitle string `json:"chapterTitle,omitempty"`
	CourseTitle  string `json:"courseTitle,omitempty"`
}

// LessonsRequest asks for the lessons of a chapter and optionally a quiz.
type LessonsRequest struct {
	ChapterID    string `json:"chapterId"`
	ChapterTitle string `json:"chapterTitle"`
	CourseTitle  string `json:"courseTitle,omitempty"`
	LessonCount  *int   `json:"lessonCount,omitempty"`
	IncludeQuiz  bool   `json:"includeQuiz"`
	Prompt       string `json:"prompt,omitempty"`
}

// QuizRequest asks for standalone multiple-choice questions.
type QuizRequest struct {
	Topic             string `json:"topic"`
	NumberOfQuestions *int   `json:"numberOfQuestions,omitempty"`
	LessonTitle       string `json:"lessonTitle,omitempty"`
}

// ClampLessonCount bounds a requested lesson count to [1, 10].
func ClampLessonCount(n int) int {
	return min(max(minLessonCount, n), maxLessonCount)
}

// ClampQuestionCount bounds a requested question count to [1, 20].
func ClampQuestionCount(n int) int {
	return min(max(minQuestionCount, n), maxQuestionCount)
}

// Count returns the clamped lesson count, defaulting to 3.
func (r LessonsRequest) Count() int {
	if r.LessonCount == nil {
		return defaultLessonCount
	}
	return ClampLessonCount(*r.LessonCount)
}

// Count returns the clamped question count, defaulting to 5.
func (r QuizRequest) Count() int {
	if r.NumberOfQuestions == nil {
		return defaultQuestionCount
	}
	return ClampQuestionCount(*r.NumberOfQuestions)
}

func messages(system, user string) []ai.Message {
	return []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// CurriculumPrompt builds the messages for a curriculum outline.
func CurriculumPrompt(req CurriculumRequest) ([]ai.Message, error) {
	if req.Prompt == "" {
		return nil, &InputError{Message: "Prompt is verplicht"}
	}
	course := req.CourseTitle
	if course == "" {
		course = defaultCourseTitle
	}

	system := `Je bent een expert curriculum ontwerper voor rijschool theorie cursussen in Nederland.
Je taak is om een curriculum te genereren met hoofdstukken voor een theorie cursus.

Cursus: ` + course + `

Genereer een JSON array met hoofdstukken. Elk hoofdstuk moet bevatten:
- title: Een duidelijke, beknopte titel
- description: Een korte beschrijving van wat behandeld wordt (1-2 zinnen)

Antwoord ALLEEN met valid JSON, geen extra tekst. Voorbeeld formaat:
[
  {"title": "Verkeersborden", "description": "Leer alle belangrijke verkeersborden en hun betekenis."},
  {"title": "Voorrangsregels", "description": "De regels voor voorrang op kruispunten en rotondes."}
]`

	return messages(system, req.Prompt), nil
}

// LessonContentPrompt builds the messages for a single Markdown lesson body.
func LessonContentPrompt(req LessonContentRequest) ([]ai.Message, error) {
	if req.Topic == "" {
		return nil, &InputError{Message: "Onderwerp is verplicht"}
	}

	var b strings.Builder
	b.WriteString("Je bent een expert content schrijver voor rijschool theorie cursussen in Nederland.\n")
	b.WriteString("Je taak is om educatieve tekst te schrijven voor theorie lessen.\n\n")
	if req.CourseTitle != "" {
		fmt.Fprintf(&b, "Cursus: %s\n", req.CourseTitle)
	}
	if req.ChapterTitle != "" {
		fmt.Fprintf(&b, "Hoofdstuk: %s\n", req.ChapterTitle)
	}
	b.WriteString(`
Schrijf een duidelijke, informatieve les tekst over het gegeven onderwerp.
De tekst moet:
- Geschikt zijn voor studenten die hun rijbewijs halen
- Duidelijk en begrijpelijk zijn
- Praktische voorbeelden bevatten waar relevant
- Gestructureerd zijn met kopjes waar nodig
- In het Nederlands zijn

Gebruik Markdown formatting voor structuur (## voor kopjes, - voor bullets, etc.).`)

	return messages(b.String(), "Schrijf een theorie les over: "+req.Topic), nil
}

// LessonBundlePrompt builds the messages for a chapter's lessons and optional quiz.
func LessonBundlePrompt(req LessonsRequest) ([]ai.Message, error) {
	if req.ChapterID == "" || req.ChapterTitle == "" {
		return nil, &InputError{Message: "Hoofdstuk ID en titel zijn verplicht"}
	}
	n := req.Count()

	var b strings.Builder
	b.WriteString("Je bent een expert theorie-instructeur voor rijexamens in Nederland.\n")
	fmt.Fprintf(&b, "Genereer lessen voor het hoofdstuk: %q\n", req.ChapterTitle)
	if req.CourseTitle != "" {
		fmt.Fprintf(&b, "Cursus: %s\n", req.CourseTitle)
	}
	fmt.Fprintf(&b, `
Genereer %d lessen met:
- Duidelijke titels
- Uitgebreide theorie content (500-1000 woorden per les)
- Praktische voorbeelden
- Tips voor het examen
- Gebruik Markdown formatting voor structuur (## voor kopjes, - voor bullets, etc.)
`, n)

	if req.IncludeQuiz {
		fmt.Fprintf(&b, `
Voeg ook een quiz toe met %[1]d vragen, elk met 4 antwoordopties en uitleg.

De quiz moet bevatten:
- Een titel (bijv. "Quiz: %[2]s")
- %[1]d vragen met elk 4 antwoordopties
- Precies 1 correct antwoord per vraag
- Een uitleg voor elke vraag
`, bundleQuizQuestions, req.ChapterTitle)
	}
	if req.Prompt != "" {
		fmt.Fprintf(&b, "\nExtra instructies: %s\n", req.Prompt)
	}

	b.WriteString(`
Antwoord ALLEEN met valid JSON in dit formaat:
{
  "lessons": [
    {
      "title": "Les titel",
      "type": "TEXT",
      "content": "Volledige les content in Markdown..."
    }
  ]`)
	if req.IncludeQuiz {
		fmt.Fprintf(&b, `,
  "quiz": {
    "title": "Quiz: %s",
    "questions": [
      {
        "question": "De vraag tekst?",
        "answers": [
          {"text": "Antwoord A", "isCorrect": false},
          {"text": "Antwoord B", "isCorrect": true},
          {"text": "Antwoord C", "isCorrect": false},
          {"text": "Antwoord D", "isCorrect": false}
        ],
        "explanation": "Uitleg waarom B correct is..."
      }
    ]
  }`, req.ChapterTitle)
	}
	b.WriteString("\n}")

	user := fmt.Sprintf("Genereer %d theorie lessen", n)
	if req.IncludeQuiz {
		user += " en een quiz"
	}
	user += fmt.Sprintf(" voor het hoofdstuk %q.", req.ChapterTitle)

	return messages(b.String(), user), nil
}

// QuizPrompt builds the messages for standalone quiz questions.
func QuizPrompt(req QuizRequest) ([]ai.Message, error) {
	if req.Topic == "" {
		return nil, &InputError{Message: "Onderwerp is verplicht"}
	}
	n := req.Count()

	var b strings.Builder
	b.WriteString("Je bent een expert quiz maker voor rijschool theorie examens in Nederland.\n")
	b.WriteString("Je taak is om realistische meerkeuze vragen te genereren voor theorie examens.\n\n")
	if req.LessonTitle != "" {
		fmt.Fprintf(&b, "Les: %s\n\n", req.LessonTitle)
	}
	fmt.Fprintf(&b, `Genereer %d quiz vragen over het gegeven onderwerp.

Elke vraag moet bevatten:
- question: De vraag tekst
- explanation: Uitleg waarom het correcte antwoord juist is
- answers: Array van 4 antwoorden, elk met:
  - answer: De antwoord tekst
  - is_correct: true voor het juiste antwoord, false voor foute antwoorden

Regels:
- Precies 1 antwoord per vraag moet correct zijn
- Elk antwoord moet 4 opties hebben
- Vragen moeten relevant zijn voor het Nederlandse theorie examen
- Antwoorden moeten realistisch en niet te voor de hand liggend zijn

Antwoord ALLEEN met valid JSON array, geen extra tekst. Voorbeeld:
[
  {
    "question": "Wat is de maximumsnelheid binnen de bebouwde kom?",
    "explanation": "Binnen de bebouwde kom geldt een maximumsnelheid van 50 km/u, tenzij anders aangegeven.",
    "answers": [
      {"answer": "30 km/u", "is_correct": false},
      {"answer": "50 km/u", "is_correct": true},
      {"answer": "70 km/u", "is_correct": false},
      {"answer": "80 km/u", "is_correct": false}
    ]
  }
]`, n)

	return messages(b.String(), fmt.Sprintf("Genereer %d quiz vragen over: %s", n, req.Topic)), nil
}
