package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	resuinErrors "resuin/internal/errors"
	"resuin/internal/extract"
	"resuin/internal/types"
)

const tracerName = "resuin.api"

// uploadMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const uploadMemory = 8 << 20

// analyzeHandler scores a JSON resume against one company.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.analyze")
	defer span.End()

	var req types.AnalyzeResumeInput
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeRequestError(w, span, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request", validationMessage(err), http.StatusBadRequest)
		return
	}

	s.runAnalysis(ctx, w, span, req)
}

// uploadHandler extracts the text of a multipart "resume" document and
// analyzes it like analyzeHandler.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.analyze_upload")
	defer span.End()

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		s.writeRequestError(w, span, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("resume")
	if err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request", "resume file is required", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close uploaded file")
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeRequestError(w, span, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	mimeType := extract.DetectMIMEType(header.Filename, data)
	span.SetAttributes(
		attribute.String("upload.filename", header.Filename),
		attribute.String("upload.mime_type", mimeType),
		attribute.Int64("upload.size", header.Size),
	)

	text, err := extract.Text(data, mimeType)
	if err != nil {
		s.writeAnalysisError(ctx, w, span, err)
		return
	}

	req := types.AnalyzeResumeInput{
		ResumeText:     text,
		CompanyID:      r.FormValue("companyId"),
		JobDescription: r.FormValue("jobDescription"),
		Mode:           types.Mode(r.FormValue("mode")),
	}
	if err := s.validate.Struct(req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request", validationMessage(err), http.StatusBadRequest)
		return
	}

	s.runAnalysis(ctx, w, span, req)
}

func (s *Server) runAnalysis(ctx context.Context, w http.ResponseWriter, span trace.Span, req types.AnalyzeResumeInput) {
	span.SetAttributes(
		attribute.String("company", req.CompanyID),
		attribute.String("mode", string(req.Mode)),
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.Int("request.job_length", len(req.JobDescription)),
	)

	var report types.AnalysisReport
	err := s.Observability.TrackOperation(ctx, "analyze", func(ctx context.Context) error {
		var err error
		report, err = s.Analyzer.AnalyzeContext(ctx, req.ResumeText, req.CompanyID, req.JobDescription, req.Mode)
		return err
	})
	if err != nil {
		s.writeAnalysisError(ctx, w, span, err)
		return
	}

	span.SetAttributes(
		attribute.Int("overall_score", report.OverallScore),
		attribute.Bool("passes_screening", report.PassesInitialScreening),
	)
	writeJSON(w, http.StatusOK, report)
}

// compareHandler ranks a resume across every registered company.
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer(tracerName).Start(r.Context(), "api.compare")
	defer span.End()

	var req types.CompareResumeInput
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeRequestError(w, span, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request", validationMessage(err), http.StatusBadRequest)
		return
	}

	var comparison types.Comparison
	err := s.Observability.TrackOperation(ctx, "compare", func(ctx context.Context) error {
		var err error
		comparison, err = s.Analyzer.Compare(ctx, req.ResumeText, req.JobDescription, req.Mode)
		return err
	})
	if err != nil {
		s.writeAnalysisError(ctx, w, span, err)
		return
	}

	span.SetAttributes(attribute.Int("companies", len(comparison.Entries)))
	writeJSON(w, http.StatusOK, comparison)
}

// companiesHandler lists the registered company profiles.
func (s *Server) companiesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Analyzer.Companies())
}

// writeRequestError reports a body that could not be read or decoded.
func (s *Server) writeRequestError(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", "request"))

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeErrorResponse(w, "Request too large",
			fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
}

// writeAnalysisError maps the analysis error taxonomy to HTTP statuses.
func (s *Server) writeAnalysisError(ctx context.Context, w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)
	status, title := analysisErrorStatus(err)
	span.SetAttributes(
		attribute.String("error.type", "analysis"),
		attribute.String("error.code", resuinErrors.CodeOf(err)),
	)

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Analysis request failed",
			"status", status,
			"request_id", requestIDFrom(ctx))
	}
	writeErrorResponse(w, title, err.Error(), status)
}

func analysisErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, resuinErrors.ErrEmptyInput):
		return http.StatusBadRequest, "Empty resume"
	case errors.Is(err, resuinErrors.ErrInvalidMode):
		return http.StatusBadRequest, "Invalid mode"
	case errors.Is(err, resuinErrors.ErrUnknownCompanyProfile):
		return http.StatusNotFound, "Unknown company profile"
	case errors.Is(err, resuinErrors.ErrUnreadableDocument):
		return http.StatusUnprocessableEntity, "Unreadable document"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Analysis failed"
	}
}
