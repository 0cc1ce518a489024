package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voxnotes/voxnotes/internal/media"
	"github.com/voxnotes/voxnotes/internal/store"
	"github.com/voxnotes/voxnotes/internal/transcript"
)

// TranscribeURLRequest is the JSON body for URL-based recording creation
type TranscribeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// UpdateRecordingRequest is the body for PUT /api/recordings/:id
type UpdateRecordingRequest struct {
	Title      *string `json:"title"`
	Transcript *string `json:"transcript"`
}

// handleCreateRecording accepts either a multipart audio upload (field
// "file") or a JSON body with a fetchable URL, stores the recording, and
// queues an asynchronous transcription job.
func (s *Server) handleCreateRecording(c *gin.Context) {
	recordingID := uuid.NewString()

	if file, err := c.FormFile("file"); err == nil {
		s.createFromUpload(c, recordingID, file)
		return
	}

	var req TranscribeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "provide a multipart 'file' or a JSON body with 'url'",
		})
		return
	}

	rec := &store.Recording{
		ID:        recordingID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.Save(rec); err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: fmt.Sprintf("save recording: %v", err),
		})
		return
	}

	s.queueJob(c, recordingID, req.URL, "")
}

func (s *Server) createFromUpload(c *gin.Context, recordingID string, file *multipart.FileHeader) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".m4a"
	}
	audioPath := filepath.Join(s.dataDir, recordingID+ext)

	if err := c.SaveUploadedFile(file, audioPath); err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: fmt.Sprintf("store upload: %v", err),
		})
		return
	}

	// Duration is display metadata; unknown containers probe to zero.
	duration, err := media.FileDuration(audioPath)
	if err != nil {
		duration = 0
	}

	rec := &store.Recording{
		ID:          recordingID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		DurationSec: duration.Seconds(),
		AudioPath:   audioPath,
	}
	if err := s.store.Save(rec); err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: fmt.Sprintf("save recording: %v", err),
		})
		return
	}

	s.queueJob(c, recordingID, "", audioPath)
}

func (s *Server) queueJob(c *gin.Context, recordingID, sourceURL, audioPath string) {
	job, err := s.jobQueue.AddJob(recordingID, sourceURL, audioPath)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, Response{
			Code:    503,
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, Response{
		Code: 202,
		Data: gin.H{
			"recording_id": recordingID,
			"job_id":       job.ID,
		},
		Message: "transcription queued",
	})
}

// runTranscription is the JobQueue worker body: it runs the pipeline for one
// recording and attaches the enriched result. SetResult touches only the
// result field, so title or transcript edits made while the job ran survive.
func (s *Server) runTranscription(ctx context.Context, job *Job) error {
	if _, err := s.store.Get(job.RecordingID); err != nil {
		return fmt.Errorf("load recording %s: %w", job.RecordingID, err)
	}

	var record *transcript.Record
	if job.SourceURL != "" {
		rec, err := s.pipe.ProcessURL(ctx, job.SourceURL)
		if err != nil {
			return err
		}
		record = rec
	} else {
		audio, err := os.ReadFile(job.Filename)
		if err != nil {
			return fmt.Errorf("read stored audio: %w", err)
		}
		rec, err := s.pipe.ProcessBuffer(ctx, audio, media.MIMEForExt(filepath.Ext(job.Filename)))
		if err != nil {
			return err
		}
		record = rec
	}

	_, err := s.store.SetResult(job.RecordingID, record)
	return err
}

func (s *Server) handleListRecordings(c *gin.Context) {
	recordings, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: fmt.Sprintf("list recordings: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    recordings,
		Message: "recordings retrieved",
	})
}

func (s *Server) handleGetRecording(c *gin.Context) {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "recording not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    rec,
		Message: "recording retrieved",
	})
}

func (s *Server) handleUpdateRecording(c *gin.Context) {
	var req UpdateRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body",
		})
		return
	}

	rec, err := s.store.UpdateResult(c.Param("id"), req.Title, req.Transcript)
	if err != nil {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "recording not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    rec,
		Message: "recording updated",
	})
}

func (s *Server) handleDeleteRecording(c *gin.Context) {
	id := c.Param("id")

	rec, err := s.store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "recording not found",
		})
		return
	}

	if err := s.store.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Data:    nil,
			Message: fmt.Sprintf("delete recording: %v", err),
		})
		return
	}

	// Best effort: the stored audio goes with the record.
	if rec.AudioPath != "" {
		_ = os.Remove(rec.AudioPath)
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    nil,
		Message: "recording deleted",
	})
}
