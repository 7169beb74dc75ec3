package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/curator"
	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"
)

// curatorSamplePool is how many stored books are offered to the model when
// matching reader traits.
const curatorSamplePool = 60

// CuratorService wraps the text-generation model behind two curation
// operations: summarizing a single book and matching books to reader traits.
// The model is an opaque JSON-in/JSON-out collaborator; a malformed reply is
// treated as an upstream failure, never a crash.
type CuratorService struct {
	DB        *gorm.DB
	Source    catalog.Source
	Generator curator.TextGenerator
}

// BookAnalysis is the model's read on a single book.
type BookAnalysis struct {
	ISBN13           string   `json:"isbn13"`
	Title            string   `json:"title"`
	StorySummary     string   `json:"story_summary"`
	SummaryReviews   []string `json:"summary_reviews"`
	Keywords         []string `json:"keywords"`
	RecommendTargets []string `json:"recommend_targets"`
}

const analyzeSystemPrompt = `You are a literary curator. Given a book's ` +
	`metadata and reader review titles, reply with a single JSON object: ` +
	`{"story_summary": string, "summary_reviews": [string], ` +
	`"keywords": [string], "recommend_targets": [string]}. ` +
	`Write in the language of the book's metadata.`

// AnalyzeBook looks the book up upstream, folds its description and reader
// review titles into a prompt, and returns the model's structured analysis.
func (s *CuratorService) AnalyzeBook(ctx context.Context, isbn13 string) (*BookAnalysis, error) {
	tr := otel.Tracer("services/CuratorService")
	ctx, span := tr.Start(ctx, "AnalyzeBook",
		trace.WithAttributes(attribute.String("book.isbn13", isbn13)),
	)
	defer span.End()

	it, err := s.Source.ItemLookup(ctx, isbn13)
	if errors.Is(err, catalog.ErrItemNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nAuthor: %s\nPublisher: %s\n", it.Title, it.Author, it.Publisher)
	if it.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", it.Description)
	}
	if titles := catalog.ReviewTitles(it); len(titles) > 0 {
		b.WriteString("Reader review titles:\n")
		for _, t := range titles {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}

	raw, err := s.Generator.GenerateJSON(ctx, analyzeSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out := &BookAnalysis{ISBN13: isbn13, Title: it.Title}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return nil, fmt.Errorf("%w: malformed completion: %v", ErrUpstream, err)
	}
	return out, nil
}

// TraitRecommendation pairs a stored book with the model's reasoning.
type TraitRecommendation struct {
	Book   domain.Book `json:"book"`
	Type   string      `json:"type"`
	Reason string      `json:"reason"`
}

const traitsSystemPrompt = `You are a literary curator matching books to a ` +
	`reader. Given the reader's traits and a numbered candidate list, reply ` +
	`with a single JSON object: {"recommendations": [{"book_id": number, ` +
	`"type": string, "reason": string}]}. Pick at most %d books, only from ` +
	`the candidate list, and explain each choice in one sentence.`

// RecommendForTraits asks the model to pick up to limit books for a reader
// described by trait keywords; candidates come from a random sample of the
// stored books. Picks whose book_id does not resolve are dropped.
func (s *CuratorService) RecommendForTraits(ctx context.Context, traits map[string]string, limit int) ([]TraitRecommendation, error) {
	if limit < 1 {
		limit = 3
	}
	books, err := repo.SampleBooks(ctx, s.DB, curatorSamplePool)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, nil
	}
	byID := make(map[uint]domain.Book, len(books))

	var b strings.Builder
	b.WriteString("Reader traits:\n")
	for k, v := range traits {
		fmt.Fprintf(&b, "- %s: %s\n", k, v)
	}
	b.WriteString("Candidates:\n")
	for _, bk := range books {
		byID[bk.ID] = bk
		fmt.Fprintf(&b, "%d. %s — %s (%s)\n", bk.ID, bk.Title, bk.Author, bk.CategoryName)
	}

	raw, err := s.Generator.GenerateJSON(ctx, fmt.Sprintf(traitsSystemPrompt, limit), b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var parsed struct {
		Recommendations []struct {
			BookID uint   `json:"book_id"`
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed completion: %v", ErrUpstream, err)
	}

	out := make([]TraitRecommendation, 0, limit)
	for _, rec := range parsed.Recommendations {
		bk, ok := byID[rec.BookID]
		if !ok {
			continue
		}
		out = append(out, TraitRecommendation{Book: bk, Type: rec.Type, Reason: rec.Reason})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
