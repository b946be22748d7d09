package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/dbx"
	"github.com/dmitrijs2005/moodkeeper/internal/server/config"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PhotoUploadExpiry is how long a presigned upload URL stays valid.
const PhotoUploadExpiry = 15 * time.Minute

var (
	ErrMoodNotFound     = common.NewPublicError(common.ErrNotFound, "Mood entry not found")
	ErrNoFieldsToUpdate = common.NewValidationError("", "No fields to update")
)

// S3 seams, replaced in tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

type MoodService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	now         func() time.Time
}

func NewMoodService(db *sql.DB, repomanager repomanager.RepositoryManager, config *config.Config) *MoodService {
	return &MoodService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		now:         time.Now,
	}
}

// Create stores a new entry for userID and links its activities in one
// transaction.
func (s *MoodService) Create(ctx context.Context, userID int64, req api.MoodRequest) (int64, error) {
	if err := validateStruct(req); err != nil {
		return 0, err
	}

	moodType, err := common.ParseMoodType(req.MoodType)
	if err != nil {
		return 0, err
	}

	entryTime := req.EntryTime
	if entryTime == "" {
		entryTime = s.now().Format(common.TimeLayout)
	}

	mood := &models.Mood{
		UserID:    userID,
		MoodType:  moodType,
		Note:      emptyToNil(req.Note),
		PhotoURL:  emptyToNil(req.PhotoURL),
		EntryDate: req.EntryDate,
		EntryTime: entryTime,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ids, err := s.resolveActivities(ctx, tx, req.Activities)
		if err != nil {
			return err
		}

		if _, err := s.repomanager.Moods(tx).Create(ctx, mood); err != nil {
			return err
		}

		return s.repomanager.Activities(tx).ReplaceForMood(ctx, mood.ID, ids)
	})
	if err != nil {
		return 0, fmt.Errorf("error creating mood: %w", err)
	}

	return mood.ID, nil
}

func (s *MoodService) List(ctx context.Context, userID int64, filter api.MoodFilter) ([]*models.Mood, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	moods, err := s.repomanager.Moods(s.db).List(ctx, userID, models.MoodFilter{
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Limit:     f.Limit,
		Offset:    f.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing moods: %w", err)
	}

	return moods, nil
}

func (s *MoodService) Get(ctx context.Context, userID, id int64) (*models.Mood, error) {
	mood, err := s.repomanager.Moods(s.db).Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrMoodNotFound
		}
		return nil, fmt.Errorf("error getting mood: %w", err)
	}
	return mood, nil
}

// Update applies a partial update. Activities, when present, replace the
// entry's current set.
func (s *MoodService) Update(ctx context.Context, userID, id int64, req api.MoodUpdateRequest) error {
	if req.Empty() {
		return ErrNoFieldsToUpdate
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	patch := models.MoodPatch{
		Note:      req.Note,
		PhotoURL:  req.PhotoURL,
		EntryDate: req.EntryDate,
		EntryTime: req.EntryTime,
	}
	if req.MoodType != nil {
		mt, err := common.ParseMoodType(*req.MoodType)
		if err != nil {
			return err
		}
		patch.MoodType = &mt
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var ids []int64
		if req.Activities != nil {
			var err error
			if ids, err = s.resolveActivities(ctx, tx, *req.Activities); err != nil {
				return err
			}
		}

		if err := s.repomanager.Moods(tx).Update(ctx, userID, id, patch); err != nil {
			return err
		}

		if req.Activities != nil {
			return s.repomanager.Activities(tx).ReplaceForMood(ctx, id, ids)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ErrMoodNotFound
		}
		return fmt.Errorf("error updating mood: %w", err)
	}

	return nil
}

func (s *MoodService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.Moods(s.db).Delete(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ErrMoodNotFound
		}
		return fmt.Errorf("error deleting mood: %w", err)
	}
	return nil
}

// resolveActivities maps names to catalog ids, dropping duplicates. An
// unknown name is a validation error.
func (s *MoodService) resolveActivities(ctx context.Context, tx dbx.DBTX, names []string) ([]int64, error) {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}

	if len(unique) == 0 {
		return nil, nil
	}

	found, err := s.repomanager.Activities(tx).ResolveNames(ctx, unique)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(found))
	for _, a := range found {
		byName[a.Name] = a.ID
	}

	ids := make([]int64, 0, len(unique))
	for _, n := range unique {
		id, ok := byName[n]
		if !ok {
			return nil, common.NewValidationError("activities", fmt.Sprintf("unknown activity %q", n))
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// PhotoStorageKey builds the object key for a new upload by userID.
func PhotoStorageKey(userID int64, d time.Time) string {
	return fmt.Sprintf("users/%d/%04d/%02d/%02d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *MoodService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPhotoUpload returns a presigned PUT for a fresh key under the
// user's prefix. The client stores the key as the entry's photoUrl once the
// upload succeeds.
func (s *MoodService) PresignPhotoUpload(ctx context.Context, userID int64) (*api.PhotoUpload, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bucket := s.config.S3Bucket
	key := PhotoStorageKey(userID, now)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PhotoUploadExpiry))
	if err != nil {
		return nil, err
	}

	return &api.PhotoUpload{Key: key, URL: req.URL, ExpiresAt: now.Add(PhotoUploadExpiry)}, nil
}
