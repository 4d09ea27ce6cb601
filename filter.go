package main

import "strings"

// FilterBooks keeps the books whose title contains search (case-insensitive)
// and whose category matches. AllCategories matches every category.
func FilterBooks(books []Book, search, category string) []Book {
	needle := strings.ToLower(search)
	filtered := make([]Book, 0, len(books))
	for _, b := range books {
		if !strings.Contains(strings.ToLower(b.Title), needle) {
			continue
		}
		if category != AllCategories && b.Category != category {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered
}

// FavoriteBooks returns the favorited books in catalog order.
func FavoriteBooks(books []Book, ids []int) []Book {
	favorites := make([]Book, 0, len(ids))
	for _, b := range books {
		if IsFavorite(ids, b.ID) {
			favorites = append(favorites, b)
		}
	}
	return favorites
}

func IsFavorite(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ToggleFavorite removes id from ids if present and appends it otherwise.
// The input slice is left untouched.
func ToggleFavorite(ids []int, id int) []int {
	if IsFavorite(ids, id) {
		out := make([]int, 0, len(ids)-1)
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	}
	out := make([]int, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}
