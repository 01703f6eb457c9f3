package holdings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"PortfolioLens/internal/model"
)

// LoadBook reads the book from a JSON file. Returns an empty book if the file doesn't exist.
func LoadBook(filePath string) (model.Book, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Book{Sectors: map[string]string{}}, nil
		}
		return model.Book{}, err
	}
	var book model.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return model.Book{}, err
	}
	if book.Sectors == nil {
		book.Sectors = map[string]string{}
	}
	return book, nil
}

// SaveBook writes the book to a JSON file, replacing the previous one in a single rename.
func SaveBook(filePath string, book model.Book) error {
	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
