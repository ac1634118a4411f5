package models

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/foliohq/folio/internal/db"
)

func TestCreateProject_SetsIDAndTimestamps(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)

	project := &Project{PortfolioID: p.ID, Title: "Demo", Category: "backend"}
	if err := CreateProject(d, project); err != nil {
		t.Fatal(err)
	}
	if project.ID <= 0 {
		t.Errorf("ID = %d, want > 0", project.ID)
	}
	if project.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
	if project.Technologies == nil {
		t.Error("Technologies must be non-nil")
	}
}

func TestGetProjectByID_NotFound(t *testing.T) {
	d := testDB(t)

	err := GetProjectByID(d, &Project{ID: 99999})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestSetProjectTechnologies_ReplacesSet(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)
	project := &Project{PortfolioID: p.ID, Title: "Demo"}
	if err := CreateProject(d, project); err != nil {
		t.Fatal(err)
	}

	goSkill := &Skill{PortfolioID: p.ID, Name: "Go"}
	reactSkill := &Skill{PortfolioID: p.ID, Name: "React"}
	redisSkill := &Skill{PortfolioID: p.ID, Name: "Redis"}
	for _, s := range []*Skill{goSkill, reactSkill, redisSkill} {
		if err := CreateSkill(d, s); err != nil {
			t.Fatal(err)
		}
	}

	if err := SetProjectTechnologies(d, project.ID, []int64{goSkill.ID, reactSkill.ID}); err != nil {
		t.Fatal(err)
	}
	if err := SetProjectTechnologies(d, project.ID, []int64{redisSkill.ID}); err != nil {
		t.Fatal(err)
	}

	techs, err := TechnologiesForProject(d, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(techs) != 1 || techs[0].Name != "Redis" {
		t.Errorf("techs = %v, want [Redis]", techs)
	}
}

func TestListProjects_FillsCountsAndTechnologies(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)

	skill := &Skill{PortfolioID: p.ID, Name: "Go"}
	if err := CreateSkill(d, skill); err != nil {
		t.Fatal(err)
	}

	viewed := &Project{PortfolioID: p.ID, Title: "Viewed"}
	ignored := &Project{PortfolioID: p.ID, Title: "Ignored"}
	for _, pr := range []*Project{viewed, ignored} {
		if err := CreateProject(d, pr); err != nil {
			t.Fatal(err)
		}
	}
	if err := SetProjectTechnologies(d, viewed.ID, []int64{skill.ID}); err != nil {
		t.Fatal(err)
	}

	v := seedVisitor(t, d, p.ID, "session-list-projects01", "", "")
	for range 3 {
		seedView(t, d, viewed.ID, v.ID, time.Now().UTC())
	}

	projects, err := ListProjects(d, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	byTitle := map[string]Project{}
	for _, pr := range projects {
		byTitle[pr.Title] = pr
	}
	if byTitle["Viewed"].ViewCount != 3 {
		t.Errorf("ViewCount = %d, want 3", byTitle["Viewed"].ViewCount)
	}
	if byTitle["Ignored"].ViewCount != 0 {
		t.Errorf("ViewCount = %d, want 0", byTitle["Ignored"].ViewCount)
	}
	if len(byTitle["Viewed"].Technologies) != 1 {
		t.Errorf("Technologies = %v, want [Go]", byTitle["Viewed"].Technologies)
	}
	if byTitle["Ignored"].Technologies == nil {
		t.Error("Technologies must be non-nil even when empty")
	}
}

func TestDeleteProject_CascadesViewsAndTechnologies(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)
	project := &Project{PortfolioID: p.ID, Title: "Doomed"}
	if err := CreateProject(d, project); err != nil {
		t.Fatal(err)
	}
	skill := &Skill{PortfolioID: p.ID, Name: "Go"}
	if err := CreateSkill(d, skill); err != nil {
		t.Fatal(err)
	}
	if err := SetProjectTechnologies(d, project.ID, []int64{skill.ID}); err != nil {
		t.Fatal(err)
	}
	v := seedVisitor(t, d, p.ID, "session-cascade-000001", "", "")
	seedView(t, d, project.ID, v.ID, time.Now().UTC())

	if err := DeleteProject(d, p.ID, project.ID); err != nil {
		t.Fatal(err)
	}

	var views, links int
	if err := d.QueryRow(`SELECT COUNT(*) FROM project_views WHERE project_id = ?`, project.ID).Scan(&views); err != nil {
		t.Fatal(err)
	}
	if err := d.QueryRow(`SELECT COUNT(*) FROM project_technologies WHERE project_id = ?`, project.ID).Scan(&links); err != nil {
		t.Fatal(err)
	}
	if views != 0 || links != 0 {
		t.Errorf("views = %d, links = %d, want 0 / 0", views, links)
	}

	// The skill itself survives; only the link row goes.
	if err := GetSkillByID(d, skill); err != nil {
		t.Errorf("skill should survive project deletion: %v", err)
	}
}

func TestDeleteProject_WrongPortfolio(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)
	project := &Project{PortfolioID: p.ID, Title: "Demo"}
	if err := CreateProject(d, project); err != nil {
		t.Fatal(err)
	}

	err := DeleteProject(d, p.ID+1, project.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
	if err := GetProjectByID(d, project); err != nil {
		t.Errorf("project should still exist: %v", err)
	}
}

func TestCreateSkill_DuplicateNameSamePortfolio(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)

	if err := CreateSkill(d, &Skill{PortfolioID: p.ID, Name: "Go"}); err != nil {
		t.Fatal(err)
	}
	err := CreateSkill(d, &Skill{PortfolioID: p.ID, Name: "Go"})
	if err == nil {
		t.Fatal("expected UNIQUE constraint error")
	}
	if !db.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestCreateVisitor_DuplicateSession(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)
	seedVisitor(t, d, p.ID, "session-duplicate-0001", "", "")

	err := CreateVisitor(d, &Visitor{PortfolioID: p.ID, SessionID: "session-duplicate-0001"})
	if err == nil {
		t.Fatal("expected UNIQUE constraint error")
	}
	if !db.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestDeleteMessage_ScopedToPortfolio(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)
	v := seedVisitor(t, d, p.ID, "session-message-000001", "", "")

	msg := &Message{PortfolioID: p.ID, VisitorID: v.ID, SenderName: "Sam", Body: "Hello"}
	if err := CreateMessage(d, msg); err != nil {
		t.Fatal(err)
	}

	if err := DeleteMessage(d, p.ID+1, msg.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
	if err := DeleteMessage(d, p.ID, msg.ID); err != nil {
		t.Fatal(err)
	}
	if err := GetMessageByID(d, msg); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows after delete", err)
	}
}

func TestUpsertStatistic_UpdatesInPlace(t *testing.T) {
	d := testDB(t)
	p := seedPortfolio(t, d)

	if err := UpsertStatistic(d, p.ID, "total_views", 1); err != nil {
		t.Fatal(err)
	}
	if err := UpsertStatistic(d, p.ID, "total_views", 7); err != nil {
		t.Fatal(err)
	}

	stats, err := ListStatistics(d, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].Value != 7 {
		t.Errorf("Value = %d, want 7", stats[0].Value)
	}
}
