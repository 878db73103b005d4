package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/owenmcgrath/todoist-projection/internal/domain"
)

func TestTransformInboxFirst(t *testing.T) {
	t1 := task("T1", "P")
	t1.Priority = 2
	t1.Due = &domain.DueDate{Date: testNow.AddDate(0, 0, 1).Format("2006-01-02")}
	t2 := task("T2", "inbox")

	res := Transform(Input{
		Projects: []domain.Project{
			{ID: "P", Name: "P", Order: 5},
			{ID: "inbox", Name: "Inbox", Order: 99, IsInboxProject: true},
		},
		Items: []domain.Task{t1, t2},
	}, testNow)

	if len(res.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(res.Projects))
	}
	if res.Projects[0].ID != "inbox" || res.Projects[1].ID != "P" {
		t.Fatalf("expected [inbox P], got [%s %s]", res.Projects[0].ID, res.Projects[1].ID)
	}
	for _, p := range res.Projects {
		if len(p.Tasks) != 1 {
			t.Fatalf("project %s: expected 1 task, got %d", p.ID, len(p.Tasks))
		}
	}
	if got := res.Projects[1].Tasks[0].DueStatus; got != DueTomorrow {
		t.Errorf("T1 due status = %q, want %q", got, DueTomorrow)
	}
}

func TestTransformRetention(t *testing.T) {
	project := []domain.Project{{ID: "P", Name: "P"}}
	done := func(at *string) domain.Task {
		d := task("done", "P")
		d.Checked = true
		d.CompletedAt = at
		return d
	}

	recent := Transform(Input{Projects: project, Completed: []domain.Task{done(hoursAgo(10))}}, testNow)
	if len(recent.Projects) != 1 {
		t.Fatalf("project with task completed 10h ago should be kept")
	}
	if !recent.Projects[0].Tasks[0].IsRecentlyCompleted {
		t.Errorf("expected task to be flagged recently completed")
	}

	old := Transform(Input{Projects: project, Completed: []domain.Task{done(hoursAgo(50))}}, testNow)
	if len(old.Projects) != 0 {
		t.Fatalf("project with task completed 50h ago should be dropped")
	}
}

func TestTransformFiltersLabels(t *testing.T) {
	res := Transform(Input{Labels: []domain.Label{{ID: "1", Name: "urgent"}, {ID: "2", Name: ""}}}, testNow)
	if len(res.Labels) != 1 || res.Labels[0].Name != "urgent" {
		t.Fatalf("labels = %+v, want only urgent", res.Labels)
	}
	if res.Projects == nil {
		t.Errorf("projects should be an empty slice, not nil")
	}
}

func TestTransformSectionsOrder(t *testing.T) {
	loose := task("loose", "P")
	inA := task("inA", "P")
	inA.SectionID = strPtr("A")
	inB := task("inB", "P")
	inB.SectionID = strPtr("B")
	orphan := task("orphan", "P")
	orphan.SectionID = strPtr("gone")
	orphan.Priority = 4

	res := Transform(Input{
		Projects: []domain.Project{{ID: "P"}},
		Sections: []domain.Section{
			{ID: "B", ProjectID: "P", Name: "Bee", Order: -5},
			{ID: "A", ProjectID: "P", Name: "Ay", Order: 1},
			{ID: "E", ProjectID: "P", Name: "Empty", Order: 2},
			{ID: "X", ProjectID: "P", Name: "Archived", Order: 0, Archived: true},
			{ID: "gone", ProjectID: "P", Name: "Deleted", Order: 3, Deleted: true},
		},
		Items: []domain.Task{inA, loose, inB, orphan},
	}, testNow)

	if len(res.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(res.Projects))
	}
	p := res.Projects[0]
	if len(p.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(p.Sections))
	}
	first := p.Sections[0]
	if first.ID != nil || first.Name != nil || first.Order != -1 {
		t.Fatalf("first section should be the no-section bucket, got %+v", first)
	}
	if got := ids(first.Tasks); !equalIDs(got, []string{"orphan", "loose"}) {
		t.Errorf("no-section tasks = %v", got)
	}
	var names []string
	for _, s := range p.Sections[1:] {
		names = append(names, *s.Name)
	}
	if !equalIDs(names, []string{"Bee", "Ay", "Empty"}) {
		t.Errorf("section order = %v", names)
	}
	if len(p.Sections[3].Tasks) != 0 || p.Sections[3].Tasks == nil {
		t.Errorf("empty section should carry an empty task list")
	}
	if got := ids(p.Tasks); !equalIDs(got, []string{"orphan", "loose", "inB", "inA"}) {
		t.Errorf("flattened tasks = %v", got)
	}
	if p.Tasks[2] != p.Sections[1].Tasks[0] {
		t.Errorf("flattened view should reference the section's task, not a copy")
	}
}

func TestTransformNoSectionBucketOmittedWhenEmpty(t *testing.T) {
	inA := task("inA", "P")
	inA.SectionID = strPtr("A")
	res := Transform(Input{
		Projects: []domain.Project{{ID: "P"}},
		Sections: []domain.Section{{ID: "A", ProjectID: "P", Name: "A"}},
		Items:    []domain.Task{inA},
	}, testNow)
	if got := res.Projects[0].Sections[0].ID; got == nil || *got != "A" {
		t.Fatalf("expected named section first when no-section bucket is empty")
	}
}

func TestTransformHierarchy(t *testing.T) {
	parent := task("parent", "P")
	parent.SectionID = strPtr("A")
	child := task("child", "other-project")
	child.ParentID = strPtr("parent")
	child.Priority = 1
	urgent := task("urgent", "P")
	urgent.ParentID = strPtr("parent")
	urgent.Priority = 4
	orphan := task("orphan", "P")
	orphan.ParentID = strPtr("missing")
	deletedParent := task("deleted", "P")
	deletedParent.Deleted = true
	underDeleted := task("under-deleted", "P")
	underDeleted.ParentID = strPtr("deleted")

	res := Transform(Input{
		Projects: []domain.Project{{ID: "P"}, {ID: "other-project"}},
		Sections: []domain.Section{{ID: "A", ProjectID: "P", Name: "A"}},
		Items:    []domain.Task{child, parent, orphan, urgent, deletedParent, underDeleted},
	}, testNow)

	if len(res.Projects) != 1 {
		t.Fatalf("subtask in another project must not create a root there; got %d projects", len(res.Projects))
	}
	p := res.Projects[0]
	if got := ids(p.Tasks); !equalIDs(got, []string{"orphan", "under-deleted", "parent"}) {
		t.Fatalf("roots = %v", got)
	}
	var parentNode *domain.TaskNode
	for _, n := range p.Tasks {
		if n.ID == "parent" {
			parentNode = n
		}
	}
	if got := ids(parentNode.Subtasks); !equalIDs(got, []string{"urgent", "child"}) {
		t.Fatalf("subtasks = %v", got)
	}
}

func TestTransformCompletedDuplicateReplacesLive(t *testing.T) {
	live := task("T", "P")
	done := task("T", "P")
	done.Checked = true
	done.CompletedAt = hoursAgo(1)
	res := Transform(Input{
		Projects:  []domain.Project{{ID: "P"}},
		Items:     []domain.Task{live},
		Completed: []domain.Task{done},
	}, testNow)
	if len(res.Projects[0].Tasks) != 1 {
		t.Fatalf("duplicate id should collapse to one task")
	}
	if !res.Projects[0].Tasks[0].IsRecentlyCompleted {
		t.Errorf("completed record should win")
	}
}

func TestTransformCyclicParents(t *testing.T) {
	a := task("a", "P")
	a.ParentID = strPtr("b")
	b := task("b", "P")
	b.ParentID = strPtr("a")
	self := task("self", "P")
	self.ParentID = strPtr("self")
	c := task("c", "P")
	c.ParentID = strPtr("a")

	res := Transform(Input{
		Projects: []domain.Project{{ID: "P"}},
		Items:    []domain.Task{a, b, self, c},
	}, testNow)

	p := res.Projects[0]
	if got := ids(p.Tasks); !equalIDs(got, []string{"b", "self"}) {
		t.Fatalf("roots = %v", got)
	}
	if got := ids(p.Tasks[0].Subtasks); !equalIDs(got, []string{"a"}) {
		t.Fatalf("b subtasks = %v", got)
	}
	if got := ids(p.Tasks[0].Subtasks[0].Subtasks); !equalIDs(got, []string{"c"}) {
		t.Fatalf("a subtasks = %v", got)
	}
}

func TestTransformDepthCap(t *testing.T) {
	var items []domain.Task
	for i := 0; i <= MaxDepth+1; i++ {
		it := task(string(rune('A'+i%26))+string(rune('a'+i/26)), "P")
		if i > 0 {
			it.ParentID = strPtr(items[i-1].ID)
		}
		items = append(items, it)
	}
	res := Transform(Input{Projects: []domain.Project{{ID: "P"}}, Items: items}, testNow)
	if got := len(res.Projects[0].Tasks); got != 2 {
		t.Fatalf("expected chain to split into 2 roots, got %d", got)
	}
}

func TestTransformDropsDeletedArchivedAndEmptyProjects(t *testing.T) {
	res := Transform(Input{
		Projects: []domain.Project{
			{ID: "deleted", Deleted: true},
			{ID: "archived", Archived: true},
			{ID: "empty"},
			{ID: "live", Color: "no-such-color"},
		},
		Items: []domain.Task{task("1", "deleted"), task("2", "archived"), task("3", "live")},
	}, testNow)
	if len(res.Projects) != 1 || res.Projects[0].ID != "live" {
		t.Fatalf("expected only live project, got %d", len(res.Projects))
	}
	if res.Projects[0].ColorHex != "#808080" {
		t.Errorf("unknown color should resolve to charcoal, got %s", res.Projects[0].ColorHex)
	}
}

func TestTransformDeterministic(t *testing.T) {
	in := Input{
		Projects: []domain.Project{{ID: "P", Order: 2}, {ID: "Q", Order: 1}},
		Sections: []domain.Section{{ID: "S", ProjectID: "P", Name: "S"}},
	}
	for i := 0; i < 40; i++ {
		it := task(string(rune('a'+i%26))+string(rune('0'+i/26)), []string{"P", "Q"}[i%2])
		it.Priority = 1 + i%4
		it.ChildOrder = i % 3
		if i%5 == 0 {
			it.SectionID = strPtr("S")
		}
		if i > 3 && i%3 == 0 {
			it.ParentID = strPtr(in.Items[i-3].ID)
		}
		in.Items = append(in.Items, it)
	}

	first, err := json.Marshal(Transform(in, testNow))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(Transform(in, testNow))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("run %d produced different output", i)
		}
	}
}
