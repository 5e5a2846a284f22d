package seed

// File is one seed YAML document. Files are merged in path order.
type File struct {
	Users   []User   `yaml:"users"`
	Courses []Course `yaml:"courses"`
}

// User is a seeded account. Role defaults to STUDENT.
type User struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

// Course is a seeded course with its content tree. An empty slug is derived from the title.
type Course struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Description string    `yaml:"description"`
	Category    string    `yaml:"category"`
	Price       *float64  `yaml:"price"`
	ImageURL    string    `yaml:"image_url"`
	Inactive    bool      `yaml:"inactive"`
	Chapters    []Chapter `yaml:"chapters"`
}

type Chapter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Published   bool     `yaml:"published"`
	Lessons     []Lesson `yaml:"lessons"`
}

// Lesson defaults to TEXT. Questions are only used for QUIZ lessons.
type Lesson struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Type        string     `yaml:"type"`
	Content     string     `yaml:"content"`
	VideoURL    string     `yaml:"video_url"`
	Free        bool       `yaml:"free"`
	Published   bool       `yaml:"published"`
	Questions   []Question `yaml:"questions"`
}

type Question struct {
	Question    string   `yaml:"question"`
	Explanation string   `yaml:"explanation"`
	ImageURL    string   `yaml:"image_url"`
	Answers     []Answer `yaml:"answers"`
}

type Answer struct {
	Answer  string `yaml:"answer"`
	Correct bool   `yaml:"correct"`
}
