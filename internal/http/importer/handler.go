package importer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	invoicehttp "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
)

// maxUploadSize bounds the multipart form held in memory.
const maxUploadSize = 10 << 20

type Handler struct {
	importSvc  *importer.Service
	invoiceSvc *invoice.Service
}

func NewHandler(importSvc *importer.Service, invoiceSvc *invoice.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		invoiceSvc: invoiceSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/formats", h.formats)
	r.Post("/", h.importFile)
	r.Post("/confirm", h.confirmImport)
}

type createParamsDTO struct {
	InvoiceNumber   string               `json:"invoice_number"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone,omitempty"`
	CustomerAddress string               `json:"customer_address,omitempty"`
	Items           []invoice.LineItem   `json:"items"`
	Tax             decimal.Decimal      `json:"tax"`
	CompanyInfo     *invoice.CompanyInfo `json:"company_info,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

type conflictDTO struct {
	Incoming createParamsDTO      `json:"incoming"`
	Existing invoicehttp.Response `json:"existing"`
}

type importSuccessResponse struct {
	Imported int                    `json:"imported"`
	Invoices []invoicehttp.Response `json:"invoices"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) formats(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.importSvc.Formats())
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		http.Error(w, "format field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.store(w, r, params)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]invoice.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, fromParamsDTO(p))
	}

	h.store(w, r, params)
}

// store imports params in one batch. Conflicting invoice numbers abort the
// batch and are reported with 409 so the caller can confirm a subset.
func (h *Handler) store(w http.ResponseWriter, r *http.Request, params []invoice.CreateParams) {
	result, err := h.invoiceSvc.ImportBatch(r.Context(), auth.UserFromContext(r.Context()), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: invoicehttp.ToResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, importSuccessResponse{
		Imported: len(result.Imported),
		Invoices: invoicehttp.ToResponseList(result.Imported),
	})
}

func toParamsDTO(p invoice.CreateParams) createParamsDTO {
	return createParamsDTO{
		InvoiceNumber:   p.InvoiceNumber,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		CustomerAddress: p.CustomerAddress,
		Items:           p.Items,
		Tax:             p.Tax,
		CompanyInfo:     p.CompanyInfo,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

// fromParamsDTO derives item totals rather than trusting the client.
func fromParamsDTO(p createParamsDTO) invoice.CreateParams {
	items := make([]invoice.LineItem, len(p.Items))
	for i, it := range p.Items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}

		it.Total = invoice.LineTotal(it.Quantity, it.UnitPrice)
		items[i] = it
	}

	return invoice.CreateParams{
		InvoiceNumber:   p.InvoiceNumber,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		CustomerAddress: p.CustomerAddress,
		Items:           items,
		Tax:             p.Tax,
		CompanyInfo:     p.CompanyInfo,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}
