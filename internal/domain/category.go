package domain

import "fmt"

// Category partitions content history. Each category is persisted and
// compared independently of the others.
type Category string

const (
	CategoryPrompt  Category = "prompt"
	CategoryCaption Category = "caption"
	CategoryImage   Category = "image"
	CategoryPost    Category = "post"
)

// Categories returns every known partition in a stable order.
func Categories() []Category {
	return []Category{CategoryPrompt, CategoryCaption, CategoryImage, CategoryPost}
}

// ParseCategory maps user input (singular or plural) to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "prompt", "prompts":
		return CategoryPrompt, nil
	case "caption", "captions":
		return CategoryCaption, nil
	case "image", "images":
		return CategoryImage, nil
	case "post", "posts":
		return CategoryPost, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPrompt, CategoryCaption, CategoryImage, CategoryPost:
		return true
	}
	return false
}
