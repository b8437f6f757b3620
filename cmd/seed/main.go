package main

import (
	"context"
	"log"
	"time"

	"cares/internal/app"
	"cares/internal/catalog"
	"cares/internal/config"
	"cares/internal/generator"
	"cares/internal/model"
	"cares/internal/service"
)

type demo struct {
	child  model.ChildInfo
	option func(qid int) string
}

var demos = []demo{
	{
		child:  model.ChildInfo{ChildName: "Demo Worst Case", ChildAge: 9, ParentContact: "parent-a@example.com"},
		option: func(int) string { return "A" },
	},
	{
		child:  model.ChildInfo{ChildName: "Demo Best Case", ChildAge: 14, ParentContact: "parent-b@example.com"},
		option: func(int) string { return "D" },
	},
	{
		child: model.ChildInfo{ChildName: "Demo Mixed", ChildAge: 11, ParentContact: "parent-c@example.com"},
		option: func(qid int) string {
			return []string{"A", "B", "C", "D"}[(qid-1)%4]
		},
	},
}

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backends, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open backends: %v", err)
	}
	defer backends.Close()

	cat := catalog.Default()
	svc := service.NewAssessmentService(cat, generator.Offline{}, backends.ReportRepo, backends.ReportCache)

	for _, d := range demos {
		req := &model.AssessmentRequest{ChildInfo: d.child}
		for _, q := range cat.Questions() {
			req.Answers = append(req.Answers, model.Answer{QID: q.ID, Option: d.option(q.ID)})
		}
		resp, err := svc.Assess(ctx, req)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", d.child.ChildName, err)
		}
		log.Printf("Seeded report %d for %s: %.1f %s", resp.ID, d.child.ChildName, resp.Score, resp.Category)
	}

	log.Printf("Seeded %d demo reports into %s store", len(demos), cfg.Store.Driver)
}
