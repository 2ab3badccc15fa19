package member

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/memberhub/registry-api/internal/model"
	"github.com/memberhub/registry-api/internal/shared/database"
	"github.com/memberhub/registry-api/internal/shared/logger"
	"github.com/memberhub/registry-api/internal/shared/qrcode"
	"github.com/memberhub/registry-api/internal/shared/storage"
	"gorm.io/gorm"
)

type MemberService struct {
	db               *gorm.DB
	memberRepository *MemberRepository
	store            *storage.Store
	codes            *qrcode.Generator
}

func NewMemberService(db *gorm.DB, memberRepository *MemberRepository, store *storage.Store, codes *qrcode.Generator) *MemberService {
	return &MemberService{
		db:               db,
		memberRepository: memberRepository,
		store:            store,
		codes:            codes,
	}
}

// Enroll accepts an enrollment submission and provisions the member record,
// the stored photo and the verification-code image. The photo is staged
// first, so every failure path after staging removes it again; code
// generation is best-effort and never fails the enrollment. The unique email
// index is the real duplicate guarantee - the pre-check only produces a
// friendly error in the common case.
func (s *MemberService) Enroll(ctx context.Context, request *EnrollRequest, photo *multipart.FileHeader) (*MemberResponse, error) {
	log := logger.FromContext(ctx)

	// Stage the upload before anything else, mirroring an upload layer that
	// stores the file ahead of validation.
	staged := ""
	if photo != nil {
		ref, err := s.store.SavePhoto(photo)
		if err != nil {
			log.Error("failed to stage uploaded photo", "error", err)
			return nil, fmt.Errorf("stage photo: %w", err)
		}
		staged = ref
	}

	if request.FullName == "" || request.Email == "" || request.Phone == "" {
		s.discard(ctx, staged)
		return nil, fmt.Errorf("enrollment rejected %w", ErrMissingFields)
	}

	var (
		created  *model.Member
		codeRef  string
		codeMade bool
	)

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		exists, err := s.memberRepository.ExistsByEmail(ctx, tx, request.Email)
		if err != nil {
			return fmt.Errorf("check member existence: %w", err)
		}
		if exists {
			log.Warn("enrollment rejected - email taken", "email", logger.MaskEmail(request.Email))
			return fmt.Errorf("error %w", ErrEmailTaken)
		}

		member := model.NewMember(request.FullName, request.Email, request.Phone, time.Now())
		member.BirthDate = request.BirthDate
		member.BirthPlace = request.BirthPlace
		member.Activity = request.Activity
		member.IDNumber = request.IDNumber
		if staged != "" {
			member.Photo = &staged
		}

		if err := s.memberRepository.Create(ctx, tx, member); err != nil {
			return fmt.Errorf("create member: %w", err)
		}

		// The id is assigned now; generate the code image and patch the
		// reference in the same transaction so no never-persisted id ever
		// appears in a real image. A generation failure leaves QRCode absent.
		codeRef, codeMade = s.codes.Generate(ctx, member.ID)
		if codeMade {
			member.QRCode = &codeRef
			if err := s.memberRepository.Save(ctx, tx, member); err != nil {
				return fmt.Errorf("save code reference: %w", err)
			}
		}

		created = member
		return nil
	})
	if err != nil {
		s.discard(ctx, staged)
		if codeMade {
			s.discard(ctx, codeRef)
		}
		// Two concurrent enrollments can both pass the pre-check; the unique
		// index decides, and the loser is reported like the pre-check case.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("enrollment lost duplicate race", "email", logger.MaskEmail(request.Email))
			return nil, fmt.Errorf("error %w", ErrEmailTaken)
		}
		return nil, err
	}

	log.Info("member enrolled",
		"member_id", created.ID,
		"display_code", created.MemberID,
		"email", logger.MaskEmail(created.Email),
		"has_photo", staged != "",
		"has_code", codeMade,
	)

	response := NewMemberResponse(created)
	return &response, nil
}

// Get returns one member with response defaults applied.
func (s *MemberService) Get(ctx context.Context, id uint32) (*MemberResponse, error) {
	member, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	response := NewMemberResponse(member)
	return &response, nil
}

// SetStatus applies a moderation status. Any of the enumerated values is
// accepted as a target at any time; there is no forward-only progression.
func (s *MemberService) SetStatus(ctx context.Context, id uint32, status string) (*MemberResponse, error) {
	if !model.IsValidStatus(status) {
		return nil, fmt.Errorf("status %q rejected %w", status, ErrInvalidStatus)
	}

	var updated *model.Member
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("member id=%d %w", id, ErrMemberNotFound)
			}
			return fmt.Errorf("find member: %w", err)
		}

		member.Status = status
		if status == model.StatusApproved {
			now := time.Now().UTC()
			member.ApprovedAt = &now
		} else {
			member.ApprovedAt = nil
		}

		if err := s.memberRepository.Save(ctx, tx, member); err != nil {
			return fmt.Errorf("save member status: %w", err)
		}

		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("member status changed", "member_id", id, "status", status)

	response := NewMemberResponse(updated)
	return &response, nil
}

// Delete removes the member record and then best-effort removes its files.
// The record deletion is the authoritative success signal; a failed or
// already-done file removal is logged and never surfaced.
func (s *MemberService) Delete(ctx context.Context, id uint32) error {
	log := logger.FromContext(ctx)

	var victim *model.Member
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("member id=%d %w", id, ErrMemberNotFound)
			}
			return fmt.Errorf("find member: %w", err)
		}

		rows, err := s.memberRepository.Delete(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("member id=%d %w", id, ErrMemberNotFound)
		}

		victim = member
		return nil
	})
	if err != nil {
		return err
	}

	// Trailing compensation: independent, order-free, tolerant of files
	// already gone.
	if victim.Photo != nil {
		s.discard(ctx, *victim.Photo)
	}
	if victim.QRCode != nil {
		s.discard(ctx, *victim.QRCode)
	}

	log.Info("member deleted", "member_id", id)
	return nil
}

// PhotoDownload resolves a member's photo to a file on disk plus the
// suggested download name: the full name with non-alphanumerics collapsed,
// lower-cased, original extension preserved.
func (s *MemberService) PhotoDownload(ctx context.Context, id uint32) (filePath, fileName string, err error) {
	member, err := s.find(ctx, id)
	if err != nil {
		return "", "", err
	}

	if member.Photo == nil {
		return "", "", fmt.Errorf("member id=%d has no photo %w", id, ErrPhotoNotFound)
	}

	path, err := s.store.Resolve(*member.Photo)
	if err != nil {
		logger.FromContext(ctx).Warn("photo reference points at missing file",
			"member_id", id, "photo", *member.Photo)
		return "", "", fmt.Errorf("photo file missing %w", ErrPhotoNotFound)
	}

	return path, downloadName(member.FullName, *member.Photo), nil
}

// Verify is the public projection behind the verification-code URL.
func (s *MemberService) Verify(ctx context.Context, id uint32) (*VerifyResponse, error) {
	member, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	return &VerifyResponse{
		MemberID: member.MemberID,
		FullName: member.FullName,
		Status:   member.Status,
	}, nil
}

func (s *MemberService) find(ctx context.Context, id uint32) (*model.Member, error) {
	member, err := s.memberRepository.FindByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member id=%d %w", id, ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return member, nil
}

// discard removes a stored file reference, logging instead of failing.
func (s *MemberService) discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.store.Remove(ref); err != nil {
		logger.FromContext(ctx).Warn("file cleanup failed", "ref", ref, "error", err)
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func downloadName(fullName, photoRef string) string {
	base := strings.ToLower(nonAlphanumeric.ReplaceAllString(fullName, ""))
	if base == "" {
		base = "photo"
	}
	return base + strings.ToLower(filepath.Ext(photoRef))
}
