package product

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/pagination"
)

type recordingPublisher struct {
	topics []string
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, topic string) error {
	r.topics = append(r.topics, topic)
	return r.err
}

func newTestService(t *testing.T) (Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc, err := NewService(NewRepository(openTestDB(t)), pub, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, pub
}

func strPtr(s string) *string { return &s }

func TestCreateProductValidation(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	cases := map[string]CreateProductInput{
		"missing name":  {Name: "  ", Price: 100},
		"zero price":    {Name: "Soap", Price: 0},
		"negative cost": {Name: "Soap", Price: 100, OriginalCost: -1},
		"negative qty":  {Name: "Soap", Price: 100, Stock: -2},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(pub.topics) != 0 {
		t.Fatalf("rejected creates must not publish changes")
	}
}

func TestCreateProductCleansLists(t *testing.T) {
	svc, pub := newTestService(t)

	dto, err := svc.Create(context.Background(), CreateProductInput{
		Name:   " Shea Butter ",
		Price:  2500,
		Colors: []string{" red", "", "  ", "blue "},
		Sizes:  []string{"M"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Name != "Shea Butter" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if len(dto.Colors) != 2 || dto.Colors[0] != "red" || dto.Colors[1] != "blue" {
		t.Fatalf("unexpected colors %v", dto.Colors)
	}
	if dto.Stock != 0 {
		t.Fatalf("expected stock default 0, got %d", dto.Stock)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "products" {
		t.Fatalf("expected products change, got %v", pub.topics)
	}
}

func TestUpdateAndAppendImages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Name: "Soap", Price: 100, Images: []string{"a.png"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	price := int64(0)
	if _, err := svc.Update(ctx, created.ID, UpdateProductInput{Price: &price}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{Name: strPtr("Black Soap")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Black Soap" || updated.Price != 100 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	withImages, err := svc.AppendImages(ctx, created.ID, []string{"b.png", " "})
	if err != nil {
		t.Fatalf("AppendImages: %v", err)
	}
	if len(withImages.Images) != 2 || withImages.Images[1] != "b.png" {
		t.Fatalf("unexpected images %v", withImages.Images)
	}
}

func TestGetAndDeleteNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateProductInput{Name: "Soap", Price: 100}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := svc.List(ctx, ListInput{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Products) != 2 || page.NextCursor == "" {
		t.Fatalf("expected 2 products and a cursor, got %d cursor=%q", len(page.Products), page.NextCursor)
	}

	if _, err := svc.List(ctx, ListInput{Pagination: pagination.Params{Cursor: "%%%"}}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid cursor error, got %v", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc, pub := newTestService(t)
	pub.err = errors.New("redis down")

	if _, err := svc.Create(context.Background(), CreateProductInput{Name: "Soap", Price: 100}); err != nil {
		t.Fatalf("Create should succeed when change publish fails: %v", err)
	}
}
