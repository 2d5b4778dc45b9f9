package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"formbuilder/internal/model"
	"formbuilder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type flakyKV struct {
	*repository.MemoryKV
	failSet bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestLoad_InitialisesDefaults(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryKV()
	a := New(store, "ai-form-builder", counterIDs(), nil)

	require.NoError(t, a.Load(ctx))
	form := a.Form()
	assert.Equal(t, model.DefaultFormID, form.ID)
	assert.Equal(t, "My Awesome Form", form.Title)
	assert.Len(t, form.Questions, 2)
	assert.Empty(t, a.Submissions())

	raw, err := store.Get(ctx, "ai-form-builder:form")
	require.NoError(t, err)
	require.NotNil(t, raw)
	raw, err = store.Get(ctx, "ai-form-builder:submissions")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLoad_ReadsExistingState(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryKV()
	form := model.Form{ID: "f", Title: "Stored", Theme: model.ThemeGray, Questions: []model.Question{}}
	data, _ := json.Marshal(form)
	require.NoError(t, store.Set(ctx, "ns:form", data))

	a := New(store, "ns", counterIDs(), nil)
	require.NoError(t, a.Load(ctx))
	assert.Equal(t, "Stored", a.Form().Title)
}

func TestUpdateForm_PersistsAndIsolates(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryKV()
	a := New(store, "ns", counterIDs(), nil)
	require.NoError(t, a.Load(ctx))

	before := a.Form()
	after, err := a.UpdateForm(ctx, func(f model.Form) (model.Form, error) {
		f.Title = "Changed"
		f.Questions[0].Title = "Changed too"
		return f, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Changed", after.Title)
	assert.Equal(t, "My Awesome Form", before.Title)
	assert.Equal(t, "What is your name?", before.Questions[0].Title)

	reloaded := New(store, "ns", counterIDs(), nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, "Changed", reloaded.Form().Title)
}

func TestUpdateForm_FailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &flakyKV{MemoryKV: repository.NewMemoryKV()}
	a := New(store, "ns", counterIDs(), nil)
	require.NoError(t, a.Load(ctx))

	_, err := a.UpdateForm(ctx, func(f model.Form) (model.Form, error) {
		return f, errors.New("rejected")
	})
	assert.Error(t, err)

	store.failSet = true
	_, err = a.UpdateForm(ctx, func(f model.Form) (model.Form, error) {
		f.Title = "lost"
		return f, nil
	})
	assert.Error(t, err)
	assert.Equal(t, "My Awesome Form", a.Form().Title)

	err = a.AddSubmission(ctx, model.Submission{ID: "s"})
	assert.Error(t, err)
	assert.Empty(t, a.Submissions())
}

func TestAddSubmission_Appends(t *testing.T) {
	ctx := context.Background()
	a := New(repository.NewMemoryKV(), "ns", counterIDs(), nil)
	require.NoError(t, a.Load(ctx))

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, a.AddSubmission(ctx, model.Submission{ID: "s1", SubmittedAt: at}))
	require.NoError(t, a.AddSubmission(ctx, model.Submission{ID: "s2", SubmittedAt: at}))

	subs := a.Submissions()
	require.Len(t, subs, 2)
	assert.Equal(t, "s1", subs[0].ID)
	assert.Equal(t, "s2", subs[1].ID)
}

func TestUpdateForm_RequiresLoad(t *testing.T) {
	a := New(repository.NewMemoryKV(), "ns", counterIDs(), nil)
	_, err := a.UpdateForm(context.Background(), func(f model.Form) (model.Form, error) { return f, nil })
	assert.Error(t, err)
}

func TestViewSelection(t *testing.T) {
	a := New(repository.NewMemoryKV(), "ns", counterIDs(), nil)
	assert.Equal(t, model.ViewBuilder, a.View())

	require.NoError(t, a.SetView(model.ViewResponses))
	assert.Equal(t, model.ViewResponses, a.View())
	assert.ErrorIs(t, a.SetView("settings"), ErrInvalidView)

	assert.Equal(t, model.ViewViewer, a.ResolveView("#view=fill"))
	assert.Equal(t, model.ViewViewer, a.ResolveView("view=fill"))
	assert.Equal(t, model.ViewResponses, a.ResolveView(""))
	assert.Equal(t, model.ViewResponses, a.ResolveView("#other"))
}

func TestShareLink(t *testing.T) {
	link, err := ShareLink("https://forms.example.com/app?x=1#old")
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example.com/app?x=1#view=fill", link)
}
