package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/draft"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// HeroHandler handles canonical hero and counter-relation requests.
type HeroHandler struct {
	heroes   repository.HeroRepository
	counters repository.CounterRepository
	engine   *draft.Engine
}

// NewHeroHandler creates a new HeroHandler. The engine supplies fuzzy name
// resolution; when nil, lookups require exact canonical names.
func NewHeroHandler(heroes repository.HeroRepository, counters repository.CounterRepository, engine *draft.Engine) *HeroHandler {
	return &HeroHandler{heroes: heroes, counters: counters, engine: engine}
}

// canonical resolves a raw URL parameter to the canonical hero name.
func (h *HeroHandler) canonical(raw string) string {
	if h.engine == nil {
		return raw
	}
	if name, ok := h.engine.Resolver().Resolve(raw); ok {
		return name
	}
	return raw
}

// ListHeroes returns every known hero.
func (h *HeroHandler) ListHeroes(w http.ResponseWriter, r *http.Request) {
	heroes, err := h.heroes.List(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if heroes == nil {
		heroes = []*models.Hero{}
	}
	response.Success(w, heroes)
}

// GetHero returns one hero by name. The name is resolved through the alias
// table, so "yss" finds Yi Sun-shin.
func (h *HeroHandler) GetHero(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "name")
	if raw == "" {
		response.BadRequest(w, errors.New("hero name is required"))
		return
	}

	name := h.canonical(raw)
	hero, err := h.heroes.GetByName(r.Context(), name)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if hero == nil {
		response.NotFound(w, fmt.Errorf("unknown hero: %s", raw))
		return
	}

	response.Success(w, hero)
}

// CounterSet is one hero's outgoing counter relations.
type CounterSet struct {
	Hero          string   `json:"hero"`
	StrongAgainst []string `json:"strong_against"`
	WeakAgainst   []string `json:"weak_against"`
}

// GetCounters returns the hero's strong-against and weak-against lists.
func (h *HeroHandler) GetCounters(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "name")
	if raw == "" {
		response.BadRequest(w, errors.New("hero name is required"))
		return
	}

	name := h.canonical(raw)
	hero, err := h.heroes.GetByName(r.Context(), name)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if hero == nil {
		response.NotFound(w, fmt.Errorf("unknown hero: %s", raw))
		return
	}

	strong, err := h.counters.GetRelations(r.Context(), name, models.StrongAgainst)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	weak, err := h.counters.GetRelations(r.Context(), name, models.WeakAgainst)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if strong == nil {
		strong = []string{}
	}
	if weak == nil {
		weak = []string{}
	}
	response.Success(w, CounterSet{Hero: name, StrongAgainst: strong, WeakAgainst: weak})
}
