package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pizza-service/internal/apperr"
	"pizza-service/internal/catalog"
	"pizza-service/internal/domain"
	"pizza-service/internal/infra"
)

// MaxPromptLength bounds the free text forwarded to the model, in runes.
const MaxPromptLength = 500

type Outcome string

const (
	OutcomeFound       Outcome = "found"
	OutcomeNone        Outcome = "none"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeSkipped     Outcome = "skipped"
)

// Recommendation is the result of one request. Pizzas is never nil.
type Recommendation struct {
	Pizzas   []domain.Pizza `json:"pizzas"`
	Outcome  Outcome        `json:"outcome"`
	Rejected int            `json:"rejected"`
}

// Recommender turns a free text request into catalog shaped pizzas using a
// generative model. It never fails: any problem yields an empty result.
type Recommender struct {
	gen      infra.GeneratorInterface
	validate *validator.Validate
	presence *validator.Validate
	log      *zap.Logger
}

// NewRecommender builds a recommender. gen may be nil, in which case every
// request reports OutcomeUnavailable.
func NewRecommender(gen infra.GeneratorInterface, log *zap.Logger) *Recommender {
	return &Recommender{
		gen:      gen,
		validate: newPizzaValidator(),
		presence: validator.New(),
		log:      log,
	}
}

func newPizzaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Recommend returns the valid pizzas for prompt, or an empty slice.
func (r *Recommender) Recommend(ctx context.Context, prompt string) []domain.Pizza {
	return r.RecommendDetailed(ctx, prompt).Pizzas
}

// RecommendDetailed is Recommend with the reason behind an empty result.
func (r *Recommender) RecommendDetailed(ctx context.Context, prompt string) (rec Recommendation) {
	rec = Recommendation{Pizzas: []domain.Pizza{}, Outcome: OutcomeSkipped}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return rec
	}
	if r.gen == nil {
		rec.Outcome = OutcomeUnavailable
		return rec
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("recommendation panicked", zap.Any("panic", p))
			rec = Recommendation{Pizzas: []domain.Pizza{}, Outcome: OutcomeUnavailable}
		}
	}()

	raw, err := r.gen.GenerateJSON(ctx, BuildPrompt(prompt))
	if err != nil {
		r.log.Warn("recommendation call failed", zap.Error(err))
		rec.Outcome = OutcomeUnavailable
		return rec
	}

	pizzas, rejected, err := r.Parse(raw)
	if err != nil {
		r.log.Warn("recommendation response unreadable", zap.Error(err))
		rec.Outcome = OutcomeUnavailable
		return rec
	}
	for _, e := range rejected {
		r.log.Info("recommendation record dropped", zap.Error(e))
	}

	rec.Pizzas = pizzas
	rec.Rejected = len(rejected)
	if len(pizzas) == 0 {
		rec.Outcome = OutcomeNone
	} else {
		rec.Outcome = OutcomeFound
	}
	return rec
}

// RecommendForSession runs a request on behalf of s and stores the result in
// its recommendation slot. Only one request per session may be in flight.
func (r *Recommender) RecommendForSession(ctx context.Context, s *Session, prompt string) (Recommendation, error) {
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return Recommendation{}, fmt.Errorf("prompt longer than %d characters: %w", MaxPromptLength, apperr.ErrInvalidPrompt)
	}
	if !s.recommending.TryAcquire(1) {
		return Recommendation{}, apperr.ErrRecommendationInFlight
	}
	defer s.recommending.Release(1)

	rec := r.RecommendDetailed(ctx, prompt)
	if rec.Outcome != OutcomeSkipped {
		s.setRecommendations(rec.Pizzas)
	}
	return rec, nil
}

// Parse decodes a JSON array of pizza records. Each record is validated on
// its own; invalid ones are returned as errors and left out of the result.
// Only a body that is not a JSON array fails as a whole.
func (r *Recommender) Parse(raw string) ([]domain.Pizza, []error, error) {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &records); err != nil {
		return nil, nil, fmt.Errorf("decode array: %w", err)
	}

	pizzas := make([]domain.Pizza, 0, len(records))
	var rejected []error
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		p, err := r.parseRecord(rec)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			p.ID = uuid.NewString()
		}
		seen[p.ID] = struct{}{}
		pizzas = append(pizzas, p)
	}
	return pizzas, rejected, nil
}

// pizzaRecord is one model record as received. Pointer fields tell an absent
// or null value apart from a zero one.
type pizzaRecord struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Image       string           `json:"image"`
	Category    domain.Category  `json:"category"`
	Rating      *float64         `json:"rating" validate:"required"`
	Ingredients []string         `json:"ingredients"`
	Calories    *int             `json:"calories,omitempty"`
}

func (rec pizzaRecord) pizza() domain.Pizza {
	return domain.Pizza{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Price:       *rec.Price,
		Image:       rec.Image,
		Category:    rec.Category,
		Rating:      *rec.Rating,
		Ingredients: rec.Ingredients,
		Calories:    rec.Calories,
	}
}

func (r *Recommender) parseRecord(raw json.RawMessage) (domain.Pizza, error) {
	var rec pizzaRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Pizza{}, err
	}
	if err := r.presence.Struct(rec); err != nil {
		return domain.Pizza{}, fmt.Errorf("%s: missing field: %w", rec.Name, err)
	}

	p := rec.pizza()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	if !catalog.IsAllowedImage(p.Image) {
		p.Image = catalog.ImageAllowList[0]
	}
	if err := r.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.Pizza{}, fmt.Errorf("%s: %w", p.Name, verrs)
		}
		return domain.Pizza{}, err
	}
	return p, nil
}

// BuildPrompt wraps the user's request with the constraints the model must
// follow.
func BuildPrompt(request string) string {
	var sb strings.Builder
	sb.WriteString("You are a pizza chef. Suggest up to 3 pizzas for this request: \"")
	sb.WriteString(request)
	sb.WriteString("\".\nReturn a JSON array of objects with fields id, name, description, price, image, category, rating, ingredients.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- category must be one of Veg, Non-Veg, Premium.\n")
	sb.WriteString("- rating must be between 4.0 and 5.0.\n")
	sb.WriteString("- price must be between 299 and 899.\n")
	sb.WriteString("- image must be exactly one of these URLs:\n")
	for _, u := range catalog.ImageAllowList {
		sb.WriteString("  ")
		sb.WriteString(u)
		sb.WriteString("\n")
	}
	return sb.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
