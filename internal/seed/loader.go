// Package seed loads users and courses from YAML files on startup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/writgo/theorie/internal/auth"
	"github.com/writgo/theorie/internal/course"
)

// Load reads every .yaml and .yml file under dir. Invalid files are skipped
// with a warning; a missing dir yields an empty File.
func Load(dir string) (File, error) {
	var all File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			slog.Warn("skipping invalid seed YAML", "path", path, "error", err)
			return nil
		}
		all.Users = append(all.Users, f.Users...)
		all.Courses = append(all.Courses, f.Courses...)
		return nil
	})
	if err != nil {
		return File{}, fmt.Errorf("loading seed files: %w", err)
	}
	return all, nil
}

// Stats counts what Apply created.
type Stats struct {
	Users     int
	Courses   int
	Chapters  int
	Lessons   int
	Questions int
}

// Apply creates the seeded users and courses. Existing emails and course
// slugs are left untouched, so it is safe to run on every start.
func Apply(ctx context.Context, f File, users *auth.Service, content *course.Service) (Stats, error) {
	var st Stats

	for _, u := range f.Users {
		role := auth.Role(strings.ToUpper(u.Role))
		if role != auth.RoleAdmin {
			role = auth.RoleStudent
		}
		_, err := users.CreateUser(ctx, auth.SignupInput{
			Email:     u.Email,
			Password:  u.Password,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		}, role)
		if errors.Is(err, auth.ErrEmailTaken) {
			continue
		}
		if err != nil {
			return st, fmt.Errorf("seeding user %s: %w", u.Email, err)
		}
		st.Users++
	}

	for _, c := range f.Courses {
		slug := c.Slug
		if slug == "" {
			slug = course.Slugify(c.Title)
		}
		if _, err := content.GetCourseBySlug(ctx, slug); err == nil {
			continue
		} else if !errors.Is(err, course.ErrNotFound) {
			return st, err
		}
		if err := applyCourse(ctx, content, c, slug, &st); err != nil {
			return st, fmt.Errorf("seeding course %q: %w", c.Title, err)
		}
	}

	slog.Info("seed applied",
		"users", st.Users,
		"courses", st.Courses,
		"chapters", st.Chapters,
		"lessons", st.Lessons,
		"questions", st.Questions,
	)
	return st, nil
}

func applyCourse(ctx context.Context, content *course.Service, c Course, slug string, st *Stats) error {
	active := !c.Inactive
	created, err := content.CreateCourse(ctx, course.CourseInput{
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		Category:    c.Category,
		ImageURL:    c.ImageURL,
		IsActive:    &active,
		Slug:        slug,
	})
	if err != nil {
		return err
	}
	st.Courses++

	for _, ch := range c.Chapters {
		chapter, err := content.CreateChapter(ctx, course.ChapterInput{
			CourseID:    created.ID,
			Title:       ch.Title,
			Description: ch.Description,
			IsPublished: ch.Published,
		})
		if err != nil {
			return err
		}
		st.Chapters++

		for _, l := range ch.Lessons {
			typ := l.Type
			if typ == "" {
				typ = string(course.LessonText)
			}
			lesson, err := content.CreateLesson(ctx, course.LessonInput{
				CourseID:    created.ID,
				ChapterID:   chapter.ID,
				Title:       l.Title,
				Description: l.Description,
				Content:     l.Content,
				IsFree:      l.Free,
				Type:        strings.ToUpper(typ),
				VideoURL:    l.VideoURL,
				IsPublished: l.Published,
			})
			if err != nil {
				return err
			}
			st.Lessons++

			for _, q := range l.Questions {
				question, err := content.CreateQuestion(ctx, course.QuestionInput{
					LessonID:    lesson.ID,
					Question:    q.Question,
					ImageURL:    q.ImageURL,
					Explanation: q.Explanation,
				})
				if err != nil {
					return err
				}
				st.Questions++
				for _, a := range q.Answers {
					if _, err := content.CreateAnswer(ctx, course.AnswerInput{
						QuestionID: question.ID,
						Answer:     a.Answer,
						IsCorrect:  a.Correct,
					}); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
