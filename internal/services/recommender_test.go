package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
	"pizza-service/internal/catalog"
	"pizza-service/internal/domain"
	"pizza-service/internal/mocks"
)

var (
	goodRecord = `{"id":"ai-1","name":"Smoky Inferno","description":"Chipotle and jalapeno.","price":549,"image":"` +
		catalog.ImageAllowList[3] + `","category":"Non-Veg","rating":4.6,"ingredients":["Chipotle","Jalapeno","Chicken"]}`
	secondRecord = `{"id":"ai-2","name":"Garden Glow","description":"Greens.","price":349,"image":"` +
		catalog.ImageAllowList[1] + `","category":"Veg","rating":4.2,"ingredients":["Spinach","Feta"]}`
)

func TestRecommender_RecommendDetailed(t *testing.T) {
	tests := []struct {
		name        string
		prompt      string
		setupMocks  func(*mocks.MockGenerator)
		wantOutcome Outcome
		wantIDs     []string
		wantDropped int
	}{
		{
			name:        "empty prompt skips the model",
			prompt:      "",
			setupMocks:  func(*mocks.MockGenerator) {},
			wantOutcome: OutcomeSkipped,
		},
		{
			name:        "whitespace prompt skips the model",
			prompt:      "   \n\t",
			setupMocks:  func(*mocks.MockGenerator) {},
			wantOutcome: OutcomeSkipped,
		},
		{
			name:   "valid records",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return("["+goodRecord+","+secondRecord+"]", nil)
			},
			wantOutcome: OutcomeFound,
			wantIDs:     []string{"ai-1", "ai-2"},
		},
		{
			name:   "code fenced body",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return("```json\n["+goodRecord+"]\n```", nil)
			},
			wantOutcome: OutcomeFound,
			wantIDs:     []string{"ai-1"},
		},
		{
			name:   "empty array",
			prompt: "nothing",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return("[]", nil)
			},
			wantOutcome: OutcomeNone,
		},
		{
			name:   "transport failure",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
			},
			wantOutcome: OutcomeUnavailable,
		},
		{
			name:   "not json",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return("Sorry, I can't help with that.", nil)
			},
			wantOutcome: OutcomeUnavailable,
		},
		{
			name:   "object instead of array",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return(goodRecord, nil)
			},
			wantOutcome: OutcomeUnavailable,
		},
		{
			name:   "invalid records are dropped",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				body := "[" + goodRecord +
					`,{"id":"bad-rating","name":"Low","price":300,"image":"x","category":"Veg","rating":3.1,"ingredients":["a"]}` +
					`,{"id":"bad-category","name":"Odd","price":300,"category":"Vegan","rating":4.5,"ingredients":["a"]}` +
					`,{"id":"no-name","price":300,"category":"Veg","rating":4.5,"ingredients":["a"]}` +
					`,{"id":"no-ingredients","name":"Bare","price":300,"category":"Veg","rating":4.5,"ingredients":[]}` +
					`,{"id":"negative","name":"Cheap","price":-1,"category":"Veg","rating":4.5,"ingredients":["a"]}` +
					`,{"id":"wrong-type","name":"Typed","price":"lots","category":"Veg","rating":"high","ingredients":["a"]}` +
					`,{"id":"no-price","name":"Free","category":"Veg","rating":4.5,"ingredients":["a"]}` +
					`,{"id":"null-price","name":"NullPrice","price":null,"category":"Veg","rating":4.5,"ingredients":["a"]}` +
					`,{"id":"no-rating","name":"Unrated","price":300,"category":"Veg","ingredients":["a"]}` +
					`,42]`
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return(body, nil)
			},
			wantOutcome: OutcomeFound,
			wantIDs:     []string{"ai-1"},
			wantDropped: 10,
		},
		{
			name:   "only invalid records",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Return(`[{"name":"x"}]`, nil)
			},
			wantOutcome: OutcomeNone,
			wantDropped: 1,
		},
		{
			name:   "generator panics",
			prompt: "something spicy",
			setupMocks: func(g *mocks.MockGenerator) {
				g.On("GenerateJSON", mock.Anything, mock.Anything).Panic("boom")
			},
			wantOutcome: OutcomeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mocks.MockGenerator)
			tt.setupMocks(gen)

			rec := NewRecommender(gen, zap.NewNop()).RecommendDetailed(context.Background(), tt.prompt)

			assert.Equal(t, tt.wantOutcome, rec.Outcome)
			assert.NotNil(t, rec.Pizzas)
			assert.Equal(t, tt.wantDropped, rec.Rejected)

			ids := make([]string, 0, len(rec.Pizzas))
			for _, p := range rec.Pizzas {
				ids = append(ids, p.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.wantIDs, ids)
			}

			if tt.wantOutcome == OutcomeSkipped {
				gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything)
			}
			gen.AssertExpectations(t)
		})
	}
}

func TestRecommender_NilGeneratorIsUnavailable(t *testing.T) {
	r := NewRecommender(nil, zap.NewNop())

	rec := r.RecommendDetailed(context.Background(), "anything")
	assert.Equal(t, OutcomeUnavailable, rec.Outcome)
	assert.Empty(t, r.Recommend(context.Background(), "anything"))
}

func TestRecommender_RecommendNeverNil(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return("{{{", nil)

	got := NewRecommender(gen, zap.NewNop()).Recommend(context.Background(), "x")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommender_PromptCarriesConstraints(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(p string) bool {
		if !strings.Contains(p, "extra cheesy") {
			return false
		}
		for _, u := range catalog.ImageAllowList {
			if !strings.Contains(p, u) {
				return false
			}
		}
		return strings.Contains(p, "Veg, Non-Veg, Premium") && strings.Contains(p, "4.0 and 5.0")
	})).Return("[]", nil).Once()

	NewRecommender(gen, zap.NewNop()).Recommend(context.Background(), "  extra cheesy ")
	gen.AssertExpectations(t)
}

func TestRecommender_ParseRepairsIDsAndImages(t *testing.T) {
	r := NewRecommender(nil, zap.NewNop())
	body := `[
		{"name":"A","price":300,"image":"https://example.com/a.jpg","category":"Veg","rating":4.5,"ingredients":["a"]},
		{"id":"same","name":"B","price":300,"image":"` + catalog.ImageAllowList[2] + `","category":"Premium","rating":5,"ingredients":["b"]},
		{"id":"same","name":"C","price":300,"image":"` + catalog.ImageAllowList[4] + `","category":"Premium","rating":4,"ingredients":["c"]}
	]`

	pizzas, rejected, err := r.Parse(body)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, pizzas, 3)

	assert.NotEmpty(t, pizzas[0].ID)
	assert.Equal(t, catalog.ImageAllowList[0], pizzas[0].Image)
	assert.Equal(t, catalog.ImageAllowList[2], pizzas[1].Image)

	assert.Equal(t, "same", pizzas[1].ID)
	assert.NotEqual(t, "same", pizzas[2].ID)
	assert.NotEqual(t, pizzas[0].ID, pizzas[2].ID)
	for _, p := range pizzas {
		assert.True(t, catalog.IsAllowedImage(p.Image))
		assert.True(t, p.Category.Valid())
	}
}

func TestRecommender_ParseRejectsMissingPrice(t *testing.T) {
	r := NewRecommender(nil, zap.NewNop())
	img := catalog.ImageAllowList[1]
	body := `[
		{"id":"a","name":"Free","description":"d","image":"` + img + `","category":"Veg","rating":4.5,"ingredients":["a"]},
		{"id":"b","name":"NullPrice","description":"d","price":null,"image":"` + img + `","category":"Veg","rating":4.5,"ingredients":["a"]}
	]`

	pizzas, rejected, err := r.Parse(body)
	require.NoError(t, err)
	assert.Empty(t, pizzas)
	require.Len(t, rejected, 2)
	for _, e := range rejected {
		assert.Contains(t, e.Error(), "missing field")
		assert.Contains(t, e.Error(), "Price")
	}
}

func TestRecommender_RecommendForSession(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return("["+goodRecord+"]", nil).Once()
	r := NewRecommender(gen, zap.NewNop())
	s := newTestSession()

	rec, err := r.RecommendForSession(context.Background(), s, "spicy")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFound, rec.Outcome)

	p, ok := s.Recommendation("ai-1")
	require.True(t, ok)
	item, err := NewRecommendedLineItem(p)
	require.NoError(t, err)
	assert.Equal(t, "549", item.TotalPrice.String())

	// an empty prompt keeps the previous results
	rec, err = r.RecommendForSession(context.Background(), s, " ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, rec.Outcome)
	assert.Len(t, s.Snapshot().Recommendations, 1)

	gen.AssertExpectations(t)
}

func TestRecommender_RecommendForSessionRejects(t *testing.T) {
	r := NewRecommender(new(mocks.MockGenerator), zap.NewNop())

	t.Run("too long", func(t *testing.T) {
		_, err := r.RecommendForSession(context.Background(), newTestSession(), strings.Repeat("a", MaxPromptLength+1))
		assert.ErrorIs(t, err, apperr.ErrInvalidPrompt)
	})

	t.Run("in flight", func(t *testing.T) {
		s := newTestSession()
		require.True(t, s.recommending.TryAcquire(1))
		defer s.recommending.Release(1)

		_, err := r.RecommendForSession(context.Background(), s, "spicy")
		assert.ErrorIs(t, err, apperr.ErrRecommendationInFlight)
	})
}

func TestRecommender_UnavailableClearsSlot(t *testing.T) {
	gen := new(mocks.MockGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()
	s := newTestSession()
	p := mustPizza(t, "p1")
	s.setRecommendations([]domain.Pizza{p})

	rec, err := NewRecommender(gen, zap.NewNop()).RecommendForSession(context.Background(), s, "spicy")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnavailable, rec.Outcome)
	assert.Empty(t, s.Snapshot().Recommendations)
}

func TestPizzaValidator_AcceptsCatalog(t *testing.T) {
	v := newPizzaValidator()
	for _, p := range catalog.ListPizzas() {
		assert.NoError(t, v.Struct(p), p.ID)
	}
}
