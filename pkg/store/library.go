package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const (
	// CurrentKey holds the form being edited.
	CurrentKey = "current"
	// SavedPrefix prefixes every saved form key.
	SavedPrefix = "forms/"
)

var (
	ErrFormNameRequired = errors.New("store: form name is required")
	ErrFormEmpty        = errors.New("store: form has no fields")
	ErrFormNotFound     = errors.New("store: form not found")
)

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithSeeds sets the forms List returns while nothing has been saved.
func WithSeeds(forms ...schema.Form) LibraryOption {
	return func(l *Library) {
		l.seeds = append(l.seeds[:0:0], forms...)
	}
}

// WithClock overrides the time source used to stamp saved forms.
func WithClock(now func() time.Time) LibraryOption {
	return func(l *Library) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator overrides how saved forms are identified.
func WithIDGenerator(next func() string) LibraryOption {
	return func(l *Library) {
		if next != nil {
			l.newID = next
		}
	}
}

// Library manages the in-progress form and the collection of saved forms.
type Library struct {
	store Store
	seeds []schema.Form
	now   func() time.Time
	newID func() string
}

// NewLibrary wraps store.
func NewLibrary(store Store, opts ...LibraryOption) *Library {
	l := &Library{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Current returns the in-progress form, if one was stored.
func (l *Library) Current(ctx context.Context) (schema.Form, bool, error) {
	return l.store.Read(ctx, CurrentKey)
}

// SaveCurrent stores form as the in-progress form.
func (l *Library) SaveCurrent(ctx context.Context, form schema.Form) error {
	return l.store.Write(ctx, CurrentKey, form)
}

// ClearCurrent removes the in-progress form.
func (l *Library) ClearCurrent(ctx context.Context) error {
	return l.store.Delete(ctx, CurrentKey)
}

// Save assigns an id and creation time to form and stores it. The returned
// form carries the assigned values.
func (l *Library) Save(ctx context.Context, form schema.Form) (schema.Form, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return schema.Form{}, ErrFormNameRequired
	}
	if len(form.Fields) == 0 {
		return schema.Form{}, ErrFormEmpty
	}

	saved := form.Clone()
	saved.Name = name
	saved.ID = l.newID()
	created := l.now().UTC()
	saved.CreatedAt = &created

	if err := l.store.Write(ctx, SavedPrefix+saved.ID, saved); err != nil {
		return schema.Form{}, err
	}
	return saved, nil
}

// List returns saved forms newest first. When nothing has been saved the
// configured seeds are returned instead.
func (l *Library) List(ctx context.Context) ([]schema.Form, error) {
	keys, err := l.store.Keys(ctx, SavedPrefix)
	if err != nil {
		return nil, err
	}

	forms := make([]schema.Form, 0, len(keys))
	for _, key := range keys {
		form, ok, err := l.store.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			forms = append(forms, form)
		}
	}

	if len(forms) == 0 {
		out := make([]schema.Form, len(l.seeds))
		for i, seed := range l.seeds {
			out[i] = seed.Clone()
		}
		return out, nil
	}

	sort.SliceStable(forms, func(i, j int) bool {
		return createdAt(forms[i]).After(createdAt(forms[j]))
	})
	return forms, nil
}

// Get returns the saved form with id. Seeds are searched when no saved form
// matches, so every id List can return resolves.
func (l *Library) Get(ctx context.Context, id string) (schema.Form, error) {
	form, ok, err := l.store.Read(ctx, SavedPrefix+id)
	if err != nil {
		return schema.Form{}, err
	}
	if ok {
		return form, nil
	}
	for _, seed := range l.seeds {
		if seed.ID != "" && seed.ID == id {
			return seed.Clone(), nil
		}
	}
	return schema.Form{}, ErrFormNotFound
}

// Delete removes the saved form with id. Deleting an unknown id is a no-op.
func (l *Library) Delete(ctx context.Context, id string) error {
	return l.store.Delete(ctx, SavedPrefix+id)
}

func createdAt(form schema.Form) time.Time {
	if form.CreatedAt == nil {
		return time.Time{}
	}
	return *form.CreatedAt
}
