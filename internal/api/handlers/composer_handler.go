package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/service"
	"github.com/autumsam/postpilot/internal/transfer"
)

type ComposerHandler struct {
	sessions *composer.Manager
	media    service.MediaService
}

func NewComposerHandler(sessions *composer.Manager, media service.MediaService) *ComposerHandler {
	return &ComposerHandler{sessions: sessions, media: media}
}

func (h *ComposerHandler) composer(c *fiber.Ctx) *composer.Composer {
	return h.sessions.Get(c.Context(), GetUserID(c))
}

func (h *ComposerHandler) Snapshot(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.composer(c).Snapshot())
}

func (h *ComposerHandler) TogglePlatform(c *fiber.Ctx) error {
	var req transfer.TogglePlatformRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.composer(c)
	cmp.TogglePlatform(composer.PlatformID(req.Platform))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"platforms": cmp.Platforms(),
	})
}

func (h *ComposerHandler) SetContent(c *fiber.Ctx) error {
	var req transfer.SetContentRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.composer(c)
	cmp.SetContent(req.Content)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"character_count": cmp.CharacterCount(),
		"over_threshold":  cmp.OverWarningThreshold(),
	})
}

func (h *ComposerHandler) AppendHashtag(c *fiber.Ctx) error {
	cmp := h.composer(c)
	cmp.AppendHashtagMarker()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"content": cmp.Content()})
}

func (h *ComposerHandler) AppendMention(c *fiber.Ctx) error {
	cmp := h.composer(c)
	cmp.AppendMentionMarker()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"content": cmp.Content()})
}

func (h *ComposerHandler) AppendEmoji(c *fiber.Ctx) error {
	var req transfer.AppendEmojiRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.composer(c)
	cmp.AppendEmoji(req.Emoji)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"content": cmp.Content()})
}

// UploadMedia stores the file and attaches it to the draft.
func (h *ComposerHandler) UploadMedia(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no file provided",
		})
	}

	uploaded, err := h.media.Upload(c.Context(), userID, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	item, err := h.composer(c).AddMedia(uploaded.Type, uploaded.AssetID, uploaded.FileName, uploaded.PreviewURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to attach media",
		})
	}

	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ComposerHandler) AddLibraryTrack(c *fiber.Ctx) error {
	var req transfer.LibraryTrackRequest
	if !parseBody(c, &req) {
		return nil
	}

	assetID, err := h.media.SaveLibraryTrack(c.Context(), GetUserID(c), req.TrackName, req.BackgroundStyle)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	item, err := h.composer(c).AddLibraryTrack(assetID, req.TrackName, req.BackgroundStyle)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unable to attach track",
		})
	}

	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ComposerHandler) UpdateMedia(c *fiber.Ctx) error {
	var req transfer.MediaPatchRequest
	if !parseBody(c, &req) {
		return nil
	}

	h.composer(c).UpdateMedia(c.Params("id"), composer.MediaPatch{
		Price:           req.Price,
		Description:     req.Description,
		BackgroundStyle: req.BackgroundStyle,
		Comment:         req.Comment,
	})

	return c.SendStatus(fiber.StatusOK)
}

func (h *ComposerHandler) RemoveMedia(c *fiber.Ctx) error {
	h.composer(c).RemoveMedia(c.Params("id"))
	return c.SendStatus(fiber.StatusOK)
}

func (h *ComposerHandler) ClearMedia(c *fiber.Ctx) error {
	h.composer(c).ClearMedia()
	return c.SendStatus(fiber.StatusOK)
}

func (h *ComposerHandler) Preview(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"pages": h.composer(c).Preview(),
	})
}

func (h *ComposerHandler) SetScheduleDate(c *fiber.Ctx) error {
	var req transfer.ScheduleDateRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.composer(c)
	if req.Date == "" {
		cmp.SetScheduleDate(nil)
	} else {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid date",
			})
		}
		cmp.SetScheduleDate(&day)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"schedule": cmp.Schedule()})
}

func (h *ComposerHandler) SetScheduleTime(c *fiber.Ctx) error {
	var req transfer.ScheduleTimeRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.composer(c)
	if err := cmp.SetScheduleTime(req.Time); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"schedule": cmp.Schedule()})
}

func (h *ComposerHandler) CommitNow(c *fiber.Ctx) error {
	receipt, err := h.composer(c).CommitNow(c.Context())
	return h.commitResponse(c, receipt, err)
}

func (h *ComposerHandler) CommitSchedule(c *fiber.Ctx) error {
	receipt, err := h.composer(c).CommitSchedule(c.Context())
	return h.commitResponse(c, receipt, err)
}

// commitResponse distinguishes composer precondition failures from
// submission failures: the former never left the process.
func (h *ComposerHandler) commitResponse(c *fiber.Ctx, receipt *composer.Receipt, err error) error {
	if err != nil {
		if composer.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(receipt)
}

func (h *ComposerHandler) SelectCandidate(c *fiber.Ctx) error {
	var req transfer.SelectCandidateRequest
	if !parseBody(c, &req) {
		return nil
	}

	cmp := h.composer(c)
	cmp.SelectCandidate(req.Text)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"content":         cmp.Content(),
		"character_count": cmp.CharacterCount(),
	})
}
