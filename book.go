package main

// Book is a single catalog entry.
type Book struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// AllCategories is the category selection that disables category filtering.
const AllCategories = "All"

// catalog is the fixed book list. Nothing adds or removes entries at runtime.
var catalog = []Book{
	{ID: 1, Title: "Introduction to React", Author: "D. Usta", Category: "Web"},
	{ID: 2, Title: "Advanced JavaScript", Author: "S. Kılıç", Category: "Web"},
	{ID: 3, Title: "Data Structures", Author: "A. Demir", Category: "CS"},
	{ID: 4, Title: "Algorithms", Author: "E. Kaya", Category: "CS"},
	{ID: 5, Title: "UI/UX Fundamentals", Author: "N. Akın", Category: "Design"},
	{ID: 6, Title: "Python Programming", Author: "B. Yılmaz", Category: "CS"},
}

// Catalog returns a copy of the built-in book list.
func Catalog() []Book {
	books := make([]Book, len(catalog))
	copy(books, catalog)
	return books
}

// Categories returns AllCategories followed by every distinct category in
// order of first appearance.
func Categories(books []Book) []string {
	seen := make(map[string]bool)
	categories := []string{AllCategories}
	for _, b := range books {
		if seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		categories = append(categories, b.Category)
	}
	return categories
}

func HasCategory(categories []string, name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

func BookByID(books []Book, id int) (Book, bool) {
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}
