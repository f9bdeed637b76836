package service

import (
	"github.com/minio/minio-go/v7"

	"pdao-records/internal/config"
	"pdao-records/internal/pkg/lock"
	"pdao-records/internal/repository"
	"pdao-records/internal/service/card"
	"pdao-records/internal/service/document"
	"pdao-records/internal/service/email"
	"pdao-records/internal/service/notification"
	"pdao-records/internal/service/renewal"
)

type Services struct {
	Card         card.Service
	Renewal      renewal.Service
	Notification notification.Service
	Email        email.Service
	Documents    document.Store
	Gate         *notification.Gate
}

// NewServices wires the services. A nil locker serialises the notification
// gate within this process only.
func NewServices(repos *repository.Repositories, locker lock.Locker, minioClient *minio.Client, cfg *config.Config) *Services {
	var documents document.Store = document.StaticStore{}
	if minioClient != nil {
		documents = document.NewMinIOStore(minioClient, cfg.MinIOBucket)
	}

	emailService := email.NewService(cfg)
	gate := notification.NewGate(repos.Notification, locker)
	notificationService := notification.NewService(repos.Notification, gate, emailService, notification.Options{
		Locale:       cfg.Locale,
		LookbackDays: cfg.NotificationLookbackDays,
	})
	cardService := card.NewService(repos.Card, repos.Member, card.Options{
		ValidityYears:     cfg.CardValidityYears,
		RenewalWindowDays: cfg.RenewalWindowDays,
	})
	renewalService := renewal.NewService(
		repos.RenewalRequest,
		repos.Member,
		cardService,
		notificationService,
		documents,
		cfg.Now,
	)

	return &Services{
		Card:         cardService,
		Renewal:      renewalService,
		Notification: notificationService,
		Email:        emailService,
		Documents:    documents,
		Gate:         gate,
	}
}
