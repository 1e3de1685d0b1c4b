package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/balaji-balu/lizzy-client/pkg/model"
)

func TestGetAdvancesScript(t *testing.T) {
	st := New()
	st.Put(model.Stack{StackName: "kio", Version: "1"}, "")
	st.Script("kio-1", "CREATE_IN_PROGRESS", "", "CREATE_COMPLETE")

	var got []string
	for range 4 {
		stack, ok := st.Get("kio-1")
		if !ok {
			t.Fatalf("expected stack kio-1")
		}
		got = append(got, stack.Status)
	}
	want := []string{"CREATE_IN_PROGRESS", "", "CREATE_COMPLETE", "CREATE_COMPLETE"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	st := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.Put(model.Stack{StackName: "kio", Version: "2", CreationTime: model.Timestamp{Time: base.Add(time.Hour)}}, "eu-west-1")
	st.Put(model.Stack{StackName: "kio", Version: "1", CreationTime: model.Timestamp{Time: base}}, "eu-west-1")
	st.Put(model.Stack{StackName: "other", Version: "1", CreationTime: model.Timestamp{Time: base}}, "eu-central-1")

	var ids []string
	for _, s := range st.List([]string{"kio"}, "eu-west-1") {
		ids = append(ids, s.ID())
	}
	if diff := cmp.Diff([]string{"kio-1", "kio-2"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if got := st.List(nil, "eu-central-1"); len(got) != 1 || got[0].ID() != "other-1" {
		t.Fatalf("expected only other-1 in eu-central-1, got %v", got)
	}
}

func TestDeleteAndFailures(t *testing.T) {
	st := New()
	st.Put(model.Stack{StackName: "kio", Version: "1"}, "")
	if st.Delete("missing-1") {
		t.Fatalf("expected delete of unknown stack to fail")
	}
	if !st.Delete("kio-1") || !st.Deleted("kio-1") {
		t.Fatalf("expected kio-1 deleted")
	}

	st.FailNext(Failure{Code: 500, Body: "{}"}, Failure{Code: 502})
	f, _ := st.TakeFailure()
	if f.Code != 500 {
		t.Fatalf("expected 500 first, got %d", f.Code)
	}
	f, _ = st.TakeFailure()
	if f.Code != 502 {
		t.Fatalf("expected 502 second, got %d", f.Code)
	}
	if _, ok := st.TakeFailure(); ok {
		t.Fatalf("expected no more failures")
	}
}
