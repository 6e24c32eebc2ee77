package worker

// render_worker.go
// Processes quote-render jobs from QueueRender: builds the flattened document
// view, writes the PDF, and chains an email job when a recipient is known.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"cabinetcpq/internal/catalog"
	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/repository"
)

// RenderJobPayload is the job envelope sent to QueueRender.
type RenderJobPayload struct {
	QuoteID string `json:"quote_id"`
	ToEmail string `json:"to_email,omitempty"`
}

// RenderWorker turns a quote aggregate into a PDF document on disk.
type RenderWorker struct {
	quoteRepo      repository.QuoteRepository
	catalogRepo    repository.CatalogRepository
	customerRepo   repository.CustomerRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewRenderWorker(
	quoteRepo repository.QuoteRepository,
	catalogRepo repository.CatalogRepository,
	customerRepo repository.CustomerRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
) *RenderWorker {
	return &RenderWorker{
		quoteRepo:      quoteRepo,
		catalogRepo:    catalogRepo,
		customerRepo:   customerRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process renders one quote. A returned error triggers the pool's retry and
// eventually the DLQ.
func (w *RenderWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RenderJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("render_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	quoteID, err := uuid.Parse(payload.QuoteID)
	if err != nil {
		log.Error().Str("quote_id", payload.QuoteID).Msg("render_worker: invalid quote_id")
		return nil
	}

	quote, err := w.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("render_worker: load quote: %w", err)
	}
	customer, err := w.customerRepo.FindByID(ctx, quote.CustomerID)
	if err != nil {
		return fmt.Errorf("render_worker: load customer: %w", err)
	}

	products, processings, rules, deps, err := w.catalogRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("render_worker: load catalog: %w", err)
	}
	snap := catalog.NewSnapshot(products, processings, rules, deps)

	doc := infra.QuoteDocument{
		QuoteID:          quote.ID.String(),
		CustomerName:     customer.Name,
		Subtotal:         quote.Subtotal,
		ContractDiscount: quote.ContractDiscount,
		CustomerDiscount: quote.CustomerDiscount,
		OrderDiscount:    quote.OrderDiscount,
		TotalDiscount:    quote.TotalDiscount,
		FinalTotal:       quote.FinalTotal,
		RequiresApproval: quote.RequiresApproval,
		CreatedAt:        quote.CreatedAt,
	}
	for _, item := range quote.Items {
		line := infra.QuoteDocumentLine{
			Quantity:   item.Quantity,
			BasePrice:  item.BasePrice,
			TotalPrice: item.TotalPrice,
		}
		if p, ok := snap.Product(item.ProductID); ok {
			line.Product = p.Name
		} else {
			line.Product = item.ProductID.String()
		}
		for _, ap := range item.AppliedProcessings {
			name := ap.ProcessingID.String()
			if p, ok := snap.Processing(ap.ProcessingID); ok {
				name = p.Name
			}
			line.Processings = append(line.Processings,
				fmt.Sprintf("%s ($%s)", name, ap.CalculatedPrice.StringFixed(2)))
		}
		doc.Lines = append(doc.Lines, line)
	}

	pdfPath, err := infra.GenerateQuotePDF(doc, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("render_worker: generate pdf: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("quote_id", payload.QuoteID).Msg("render_worker: PDF generated")

	if payload.ToEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: payload.ToEmail,
			Subject: fmt.Sprintf("Your quotation — %s", customer.Name),
			Body: fmt.Sprintf("Please find your quotation attached.\nTotal: $%s",
				quote.FinalTotal.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", payload.ToEmail).Msg("render_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", payload.ToEmail).Msg("render_worker: email job enqueued")
		}
	}
	return nil
}
