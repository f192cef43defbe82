package learner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	getErr error
	putErr error
	data   []byte
	puts   int
}

func (f *failingBackend) Get(context.Context, string) ([]byte, error) {
	return f.data, f.getErr
}

func (f *failingBackend) Put(_ context.Context, _ string, v []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	f.data = v
	return nil
}

func (f *failingBackend) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	if f.getErr != nil {
		return f.getErr
	}
	next, err := fn(f.data)
	if err != nil || next == nil {
		return err
	}
	return f.Put(ctx, key, next)
}

func TestLoad_Defaults(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	got := s.Load(context.Background())

	want := State{CompletedLessons: []string{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MergesPartialRecord(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, StorageKey, []byte(`{"xp":50,"completedLessons":["m1s1-intro"]}`)))

	got := NewStore(b, nil).Load(ctx)
	want := State{XP: 50, CompletedLessons: []string{"m1s1-intro"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CorruptFallsBack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{xp:"},
		{"wrong type", `{"xp":"lots"}`},
		{"array", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMemoryBackend()
			ctx := context.Background()
			require.NoError(t, b.Put(ctx, StorageKey, []byte(tt.raw)))

			got := NewStore(b, nil).Load(ctx)
			assert.Equal(t, Default(), got)
		})
	}
}

func TestLoad_BackendErrorFallsBack(t *testing.T) {
	s := NewStore(&failingBackend{getErr: errors.New("disk gone")}, nil)
	assert.Equal(t, Default(), s.Load(context.Background()))
}

func TestLoad_ClampsNegativeCursor(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, StorageKey, []byte(`{"unlockedIndex":-3,"completedLessons":null}`)))

	got := NewStore(b, nil).Load(ctx)
	assert.Equal(t, 0, got.UnlockedIndex)
	assert.NotNil(t, got.CompletedLessons)
}

func TestMutate_PersistsAndLoadIsFixedPoint(t *testing.T) {
	b := NewMemoryBackend()
	s := NewStore(b, nil)
	ctx := context.Background()

	got, err := s.Mutate(ctx, func(st *State) {
		st.XP += 25
		st.Aura++
		st.CompletedLessons = append(st.CompletedLessons, "m1s1-intro")
		st.UnlockedIndex = 1
	})
	require.NoError(t, err)

	if diff := cmp.Diff(got, s.Load(ctx)); diff != "" {
		t.Errorf("Load after Mutate mismatch (-mutate +load):\n%s", diff)
	}

	raw, _ := b.Get(ctx, StorageKey)
	assert.JSONEq(t,
		`{"xp":25,"aura":1,"completedLessons":["m1s1-intro"],"helpCount":0,"unlockedIndex":1}`,
		string(raw))
}

func TestMutate_NoChangeSkipsWriteAndNotify(t *testing.T) {
	fb := &failingBackend{}
	s := NewStore(fb, nil)
	ctx := context.Background()

	notified := 0
	s.Subscribe(func(State) { notified++ })

	_, err := s.Mutate(ctx, func(st *State) {})
	require.NoError(t, err)
	assert.Equal(t, 0, fb.puts)
	assert.Equal(t, 0, notified)

	_, err = s.Mutate(ctx, func(st *State) { st.XP = 1 })
	require.NoError(t, err)
	assert.Equal(t, 1, fb.puts)
	assert.Equal(t, 1, notified)
}

func TestMutate_SaveErrorLeavesRecord(t *testing.T) {
	fb := &failingBackend{data: []byte(`{"xp":10}`), putErr: errors.New("read-only")}
	s := NewStore(fb, nil)
	ctx := context.Background()

	notified := false
	s.Subscribe(func(State) { notified = true })

	got, err := s.Mutate(ctx, func(st *State) { st.XP = 99 })
	require.Error(t, err)
	assert.ErrorContains(t, err, "save learner state")
	assert.Equal(t, 10, got.XP)
	assert.Equal(t, `{"xp":10}`, string(fb.data))
	assert.False(t, notified)
}

func TestMutate_DoesNotAliasCallerSlices(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	ctx := context.Background()

	first, err := s.Mutate(ctx, func(st *State) {
		st.CompletedLessons = append(st.CompletedLessons, "a")
	})
	require.NoError(t, err)

	first.CompletedLessons[0] = "tampered"
	assert.Equal(t, []string{"a"}, s.Load(ctx).CompletedLessons)
}

func TestMutate_Concurrent(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Mutate(ctx, func(st *State) { st.XP += 25 })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*25, s.Load(ctx).XP)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	ctx := context.Background()

	var got []int
	unsub := s.Subscribe(func(st State) { got = append(got, st.XP) })

	_, _ = s.Mutate(ctx, func(st *State) { st.XP = 1 })
	unsub()
	unsub()
	_, _ = s.Mutate(ctx, func(st *State) { st.XP = 2 })

	assert.Equal(t, []int{1}, got)
}
