package models

import (
	"fmt"
	"strings"
)

// ContentKind is the type of a content block
type ContentKind string

const (
	ContentKindText    ContentKind = "Text"
	ContentKindComment ContentKind = "Comment"
	ContentKindLink    ContentKind = "Link"
	ContentKindCode    ContentKind = "Code"
	ContentKindImage   ContentKind = "Image"
)

// DefaultContentKind is used when a form leaves the kind empty
const DefaultContentKind = ContentKindText

// ContentKinds lists every kind in declaration order
var ContentKinds = []ContentKind{
	ContentKindText, ContentKindComment, ContentKindLink, ContentKindCode, ContentKindImage,
}

// IsValid reports whether k is one of the declared kinds
func (k ContentKind) IsValid() bool {
	for _, known := range ContentKinds {
		if k == known {
			return true
		}
	}
	return false
}

// UnmarshalText parses a kind case-insensitively
func (k *ContentKind) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = DefaultContentKind
		return nil
	}
	for _, known := range ContentKinds {
		if strings.EqualFold(string(text), string(known)) {
			*k = known
			return nil
		}
	}
	return fmt.Errorf("unknown content kind %q", string(text))
}

// Language is the source language of a Code block
type Language string

const (
	LanguageRust       Language = "Rust"
	LanguageBash       Language = "Bash"
	LanguagePython     Language = "Python"
	LanguageSql        Language = "Sql"
	LanguageHtml       Language = "Html"
	LanguageCss        Language = "Css"
	LanguageJavascript Language = "Javascript"
	LanguageTypescript Language = "Typescript"
	LanguageYaml       Language = "Yaml"
)

// DefaultLanguage is used for Code blocks created without a language
const DefaultLanguage = LanguageBash

// Languages lists every supported language
var Languages = []Language{
	LanguageRust, LanguageBash, LanguagePython, LanguageSql, LanguageHtml,
	LanguageCss, LanguageJavascript, LanguageTypescript, LanguageYaml,
}

// ParseLanguage matches s case-insensitively against the supported languages
func ParseLanguage(s string) (Language, bool) {
	for _, known := range Languages {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// IsValid reports whether l is a supported language
func (l Language) IsValid() bool {
	_, ok := ParseLanguage(string(l))
	return ok && l != ""
}

// UnmarshalText parses a language case-insensitively
func (l *Language) UnmarshalText(text []byte) error {
	lang, ok := ParseLanguage(string(text))
	if !ok {
		return fmt.Errorf("unknown language %q", string(text))
	}
	*l = lang
	return nil
}

// ProjectCategory classifies a portfolio project
type ProjectCategory string

const (
	ProjectCategoryWebApplication     ProjectCategory = "WebApplication"
	ProjectCategoryDesktopApplication ProjectCategory = "DesktopApplication"
)

// DefaultProjectCategory is used when a form leaves the category empty
const DefaultProjectCategory = ProjectCategoryWebApplication

// IsValid reports whether c is a declared category
func (c ProjectCategory) IsValid() bool {
	return c == ProjectCategoryWebApplication || c == ProjectCategoryDesktopApplication
}

// UnmarshalText parses a category case-insensitively
func (c *ProjectCategory) UnmarshalText(text []byte) error {
	switch {
	case len(text) == 0:
		*c = DefaultProjectCategory
	case strings.EqualFold(string(text), string(ProjectCategoryWebApplication)):
		*c = ProjectCategoryWebApplication
	case strings.EqualFold(string(text), string(ProjectCategoryDesktopApplication)):
		*c = ProjectCategoryDesktopApplication
	default:
		return fmt.Errorf("unknown project category %q", string(text))
	}
	return nil
}
