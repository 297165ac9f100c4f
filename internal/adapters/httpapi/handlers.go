package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type analyzeResponse struct {
	Category         string  `json:"category"`
	Confidence       float64 `json:"confidence"`
	SuggestedReply   string  `json:"suggested_reply"`
	ProcessedContent string  `json:"processed_content,omitempty"`
}

// emailRecord keeps the wire names existing dashboard clients expect,
// including "snippet" for the subject.
type emailRecord struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	Subject        string    `json:"snippet"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	Confidence     float64   `json:"confidence"`
	SuggestedReply string    `json:"suggested_reply"`
	CreatedAt      time.Time `json:"created_at"`
}

type listResponse struct {
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int64         `json:"total"`
	Emails  []emailRecord `json:"emails"`
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        s.settings.AppName,
		"version":     s.settings.AppVersion,
		"description": s.settings.AppDescription,
		"endpoints": fiber.Map{
			"health":  "/health",
			"analyze": "/analyze (POST)",
			"list":    "/list",
			"docs":    "/docs",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	loaded := s.service.ModelLoaded()
	status := "healthy"
	if !loaded {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":       status,
		"version":      s.settings.AppVersion,
		"model_loaded": loaded,
	})
}

func (s *Server) handleDocs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"Email Analysis API": fiber.Map{
			"version": s.settings.AppVersion,
			"endpoints": fiber.Map{
				"GET /health": fiber.Map{
					"description": "Verifica saúde da aplicação",
					"response": fiber.Map{
						"status":       "healthy|degraded",
						"version":      s.settings.AppVersion,
						"model_loaded": true,
					},
				},
				"POST /analyze": fiber.Map{
					"description": "Analisa email e retorna classificação",
					"request": fiber.Map{
						"email":   "Endereço de quem enviou o email",
						"subject": "Assunto do email",
						"content": "Texto do email a ser analisado",
						"file":    "Anexo .pdf ou .txt (opcional, multipart)",
					},
					"response": fiber.Map{
						"category":          "Produtivo|Improdutivo",
						"confidence":        0.85,
						"suggested_reply":   "Resposta sugerida...",
						"processed_content": "Texto processado (debug)",
					},
				},
				"GET /list": fiber.Map{
					"description": "Lista emails analisados com paginação",
					"request":     fiber.Map{"page": 1, "per_page": 10},
					"response": fiber.Map{
						"emails":   "Lista de emails analisados",
						"page":     1,
						"per_page": 10,
						"total":    42,
					},
				},
				"POST /delete/{id}": fiber.Map{
					"description": "Remove um email da listagem (soft delete)",
					"response":    fiber.Map{"success": true},
				},
				"POST /model/reload": fiber.Map{
					"description": "Recarrega o modelo de classificação",
					"response":    fiber.Map{"state": "ready", "model_loaded": true},
				},
			},
		},
	})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var email, subject, content, fileText string

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		email = c.FormValue("email")
		subject = c.FormValue("subject")
		content = c.FormValue("content")

		fileHeader, err := c.FormFile("file")
		if err == nil && fileHeader != nil {
			if !s.extractor.Supported(fileHeader.Filename) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Tipo de arquivo não suportado",
				})
			}
			fileText, err = s.extractAttachment(fileHeader)
			if err != nil {
				s.logger.Warn("Attachment extraction failed",
					zap.String("filename", fileHeader.Filename),
					zap.Error(err))
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Não foi possível extrair texto do arquivo",
				})
			}
		}
	} else {
		var req analyzeRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Dados inválidos",
			})
		}
		email, subject, content = req.Email, req.Subject, req.Content
	}

	if email == "" || subject == "" ||
		(strings.TrimSpace(content) == "" && strings.TrimSpace(fileText) == "") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Campos obrigatórios ausentes",
		})
	}

	s.logger.Info("Analyzing email",
		zap.Int("content_chars", len(content)),
		zap.Int("file_chars", len(fileText)))

	outcome := s.service.Analyze(c.UserContext(), &core.ClassificationRequest{
		SenderEmail:    email,
		Subject:        subject,
		Body:           content,
		AttachmentText: fileText,
	})

	resp := analyzeResponse{
		Category:       string(outcome.Result.Category),
		Confidence:     outcome.Result.Confidence,
		SuggestedReply: outcome.SuggestedReply,
	}
	if s.settings.Debug {
		resp.ProcessedContent = outcome.Result.NormalizedText
	}
	return c.JSON(resp)
}

func (s *Server) extractAttachment(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return s.extractor.ExtractText(fileHeader.Filename, data)
}

func (s *Server) handleList(c *fiber.Ctx) error {
	page, pageErr := strconv.Atoi(c.Query("page", "1"))
	perPage, perPageErr := strconv.Atoi(c.Query("per_page", "10"))
	if pageErr != nil || perPageErr != nil || page < 1 || perPage < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Parâmetros de paginação inválidos",
		})
	}

	records, total, err := s.store.List(c.UserContext(), page, perPage)
	if err != nil {
		s.logger.Error("Failed to list triage records", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao listar emails",
		})
	}

	emails := make([]emailRecord, 0, len(records))
	for _, rec := range records {
		emails = append(emails, emailRecord{
			ID:             rec.ID,
			Email:          rec.SenderEmail,
			Subject:        rec.Subject,
			Content:        rec.Content,
			Category:       string(rec.Category),
			Confidence:     rec.Confidence,
			SuggestedReply: rec.SuggestedReply,
			CreatedAt:      rec.CreatedAt,
		})
	}

	return c.JSON(listResponse{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Emails:  emails,
	})
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	id := c.Params("id")

	err := s.store.SoftDelete(c.UserContext(), id)
	switch {
	case errors.Is(err, core.ErrInvalidRecordID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID inválido",
		})
	case errors.Is(err, core.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Email não encontrado",
		})
	case err != nil:
		s.logger.Error("Failed to soft delete record",
			zap.String("id", id),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao deletar email",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleModelReload(c *fiber.Ctx) error {
	if err := s.service.ReloadModel(c.UserContext()); err != nil {
		s.logger.Error("Model reload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"state":        string(s.service.ModelState()),
			"model_loaded": false,
			"error":        "Falha ao recarregar o modelo",
		})
	}

	return c.JSON(fiber.Map{
		"state":        string(s.service.ModelState()),
		"model_loaded": s.service.ModelLoaded(),
	})
}
