package shoppinglist

import (
	"context"
	"fmt"
	"io"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/internal/metrics"
)

const (
	FormatPDF  = "pdf"
	FormatText = "txt"
)

type (
	ShoppingListService interface {
		AggregateShoppingList(ctx context.Context, userID uint) ([]domain.ShoppingListItem, error)
		Export(ctx context.Context, userID uint, format string, w io.Writer) error
		Renderer(format string) (Renderer, error)
	}

	shoppingListService struct {
		shoppingListRepository ShoppingListRepository
		renderers              map[string]Renderer
	}
)

func NewShoppingListService(shoppingListRepository ShoppingListRepository, fontPath string) ShoppingListService {
	return &shoppingListService{
		shoppingListRepository: shoppingListRepository,
		renderers: map[string]Renderer{
			FormatPDF:  PDFRenderer{FontPath: fontPath},
			FormatText: TextRenderer{},
		},
	}
}

func (s *shoppingListService) AggregateShoppingList(ctx context.Context, userID uint) ([]domain.ShoppingListItem, error) {
	lines, err := s.shoppingListRepository.GetCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}
	return Aggregate(lines), nil
}

func (s *shoppingListService) Renderer(format string) (Renderer, error) {
	if format == "" {
		format = FormatPDF
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedListFormat, format)
	}
	return r, nil
}

func (s *shoppingListService) Export(ctx context.Context, userID uint, format string, w io.Writer) error {
	renderer, err := s.Renderer(format)
	if err != nil {
		return err
	}
	items, err := s.AggregateShoppingList(ctx, userID)
	if err != nil {
		return err
	}
	if err := renderer.Render(w, items); err != nil {
		return err
	}
	if format == "" {
		format = FormatPDF
	}
	metrics.ShoppingListExports.WithLabelValues(format).Inc()
	return nil
}
