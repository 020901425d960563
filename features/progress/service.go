package progress

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// load gathers the folder and its satellite records. Only a missing folder is
// an error; failures loading quote, forms, signatures or shipment degrade to
// the absent state so the status view still renders.
func (s *Service) load(ctx context.Context, folderID string) (*Folder, *Quote, []FormAssignment, []Esignature, Shipment, error) {
	folder, err := s.repo.GetFolder(ctx, folderID)
	if err != nil {
		return nil, nil, nil, nil, Shipment{}, err
	}

	quote, err := s.repo.GetQuote(ctx, folderID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load quote, treating as absent", "error", err, "folder_id", folderID)
		quote = nil
	}

	forms, err := s.repo.ListForms(ctx, folderID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load forms, treating as absent", "error", err, "folder_id", folderID)
		forms = nil
	}

	sigs, err := s.repo.ListEsignatures(ctx, folderID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load esignatures, treating as absent", "error", err, "folder_id", folderID)
		sigs = nil
	}

	shipment, err := s.repo.GetShipment(ctx, folderID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load shipment, treating as absent", "error", err, "folder_id", folderID)
		shipment = Shipment{}
	}

	return folder, quote, forms, sigs, shipment, nil
}

// Tasks returns the folder's derived task list.
func (s *Service) Tasks(ctx context.Context, folderID string) ([]Task, error) {
	folder, quote, forms, sigs, _, err := s.load(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return BuildTasks(folder.ID, quote, forms, sigs, folder.FilesTotal, folder.FilesViewed), nil
}

// Progress returns the folder's stage result together with the task list it
// was derived from.
func (s *Service) Progress(ctx context.Context, folderID string) (*StageResult, []Task, error) {
	folder, quote, forms, sigs, shipment, err := s.load(ctx, folderID)
	if err != nil {
		return nil, nil, err
	}

	tasks := BuildTasks(folder.ID, quote, forms, sigs, folder.FilesTotal, folder.FilesViewed)
	result := Resolve(*folder, quote, shipment, tasks)
	return &result, tasks, nil
}

// Summary renders the folder's status as plain text for the chat assistant's
// prompt.
func (s *Service) Summary(ctx context.Context, folderID string) (string, error) {
	result, tasks, err := s.Progress(ctx, folderID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order status: %s\n", result.StageLabel)
	fmt.Fprintf(&b, "Next step: %s (owner: %s)\n", result.NextStep, result.NextStepOwner)
	fmt.Fprintf(&b, "Tasks completed: %d of %d\n", result.TasksProgress.Completed, result.TasksProgress.Total)
	for _, t := range tasks {
		fmt.Fprintf(&b, "- [%s] %s\n", t.Status, t.Title)
	}
	return b.String(), nil
}
