// Package prompt keeps the chat-completion prompt templates as data rather
// than strings baked into orchestration code. Templates can be overridden
// from a YAML file; anything left blank falls back to the built-in default.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Set holds the system/user template pair for each completion operation.
// Templates use text/template syntax; see the data structs below for the
// fields each pair may reference.
type Set struct {
	QueriesSystem string `yaml:"queries_system"`
	QueriesUser   string `yaml:"queries_user"`
	AnalyzeSystem string `yaml:"analyze_system"`
	AnalyzeUser   string `yaml:"analyze_user"`
	ArticleSystem string `yaml:"article_system"`
	ArticleUser   string `yaml:"article_user"`
}

// QueriesData feeds the query-generation templates.
type QueriesData struct {
	Topic string
	Count int
}

// AnalyzeData feeds the content-analysis templates. Content is the combined
// scraped-article body, already truncated by the caller.
type AnalyzeData struct {
	Topic   string
	Content string
}

// ArticleData feeds the article-generation templates.
type ArticleData struct {
	Topic             string
	Title             string
	PrimaryKeyword    string
	SecondaryKeywords string
	Outline           string
	WordCount         int
}

// Default returns the built-in template set.
func Default() *Set {
	return &Set{
		QueriesSystem: defaultQueriesSystem,
		QueriesUser:   defaultQueriesUser,
		AnalyzeSystem: defaultAnalyzeSystem,
		AnalyzeUser:   defaultAnalyzeUser,
		ArticleSystem: defaultArticleSystem,
		ArticleUser:   defaultArticleUser,
	}
}

// Load reads a YAML override file and merges it over the defaults. Fields
// absent from the file keep their built-in values. Every template in the
// resulting set is parse-checked before it is returned.
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read %s: %w", path, err)
	}

	var overrides Set
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("prompt: parse %s: %w", path, err)
	}

	s := Default()
	s.merge(&overrides)
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) merge(o *Set) {
	if o.QueriesSystem != "" {
		s.QueriesSystem = o.QueriesSystem
	}
	if o.QueriesUser != "" {
		s.QueriesUser = o.QueriesUser
	}
	if o.AnalyzeSystem != "" {
		s.AnalyzeSystem = o.AnalyzeSystem
	}
	if o.AnalyzeUser != "" {
		s.AnalyzeUser = o.AnalyzeUser
	}
	if o.ArticleSystem != "" {
		s.ArticleSystem = o.ArticleSystem
	}
	if o.ArticleUser != "" {
		s.ArticleUser = o.ArticleUser
	}
}

func (s *Set) validate() error {
	for name, text := range map[string]string{
		"queries_system": s.QueriesSystem,
		"queries_user":   s.QueriesUser,
		"analyze_system": s.AnalyzeSystem,
		"analyze_user":   s.AnalyzeUser,
		"article_system": s.ArticleSystem,
		"article_user":   s.ArticleUser,
	} {
		if _, err := template.New(name).Parse(text); err != nil {
			return fmt.Errorf("prompt: template %s: %w", name, err)
		}
	}
	return nil
}

// Queries renders the system and user prompts for query generation.
func (s *Set) Queries(data QueriesData) (system, user string, err error) {
	system, err = render("queries_system", s.QueriesSystem, data)
	if err != nil {
		return "", "", err
	}
	user, err = render("queries_user", s.QueriesUser, data)
	return system, user, err
}

// Analyze renders the system and user prompts for content analysis.
func (s *Set) Analyze(data AnalyzeData) (system, user string, err error) {
	system, err = render("analyze_system", s.AnalyzeSystem, data)
	if err != nil {
		return "", "", err
	}
	user, err = render("analyze_user", s.AnalyzeUser, data)
	return system, user, err
}

// Article renders the system and user prompts for article generation.
func (s *Set) Article(data ArticleData) (system, user string, err error) {
	system, err = render("article_system", s.ArticleSystem, data)
	if err != nil {
		return "", "", err
	}
	user, err = render("article_user", s.ArticleUser, data)
	return system, user, err
}

func render(name, text string, data any) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("prompt: template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", name, err)
	}
	return sb.String(), nil
}
