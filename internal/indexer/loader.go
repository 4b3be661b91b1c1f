package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxStars is the upper bound of a star rating.
const MaxStars = 5

// LoadReviewsFile opens path and loads it with LoadReviews.
func LoadReviewsFile(path string) ([]Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reviews file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return LoadReviews(f)
}

// LoadReviews decodes a reviews file and validates every record.
// Names and texts are trimmed. All validation problems are reported together.
func LoadReviews(r io.Reader) ([]Review, error) {
	var file reviewsFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode reviews file: %w", err)
	}
	if len(file.Reviews) == 0 {
		return nil, errors.New("reviews file contains no reviews")
	}

	var errs []error
	seen := make(map[string]int, len(file.Reviews))
	reviews := make([]Review, 0, len(file.Reviews))
	for i, rev := range file.Reviews {
		rev.Professor = strings.TrimSpace(rev.Professor)
		rev.Subject = strings.TrimSpace(rev.Subject)
		rev.Review = strings.TrimSpace(rev.Review)

		if err := validateReview(rev); err != nil {
			errs = append(errs, fmt.Errorf("review %d: %w", i, err))
			continue
		}
		if first, ok := seen[rev.Professor]; ok {
			errs = append(errs, fmt.Errorf("review %d: professor %q already listed at review %d", i, rev.Professor, first))
			continue
		}
		seen[rev.Professor] = i
		reviews = append(reviews, rev)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reviews, nil
}

func validateReview(rev Review) error {
	if rev.Professor == "" {
		return errors.New("professor is required")
	}
	if rev.Review == "" {
		return errors.New("review is required")
	}
	if rev.Stars < 0 || rev.Stars > MaxStars {
		return fmt.Errorf("stars must be between 0 and %d, got %v", MaxStars, rev.Stars)
	}
	return nil
}
