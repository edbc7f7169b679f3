package usecase

import (
	"context"
	"errors"

	"medbook/internal/delivery/dto"
	"medbook/internal/domain/repository"
	"medbook/internal/infrastructure/gateway"
	"medbook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrWhatsAppNotConfigured = errors.New("organization has no whatsapp instance")

// WhatsAppGateway is the part of the Evolution API the dashboard polls
type WhatsAppGateway interface {
	ConnectionState(ctx context.Context, instance string) (*gateway.ConnectionState, error)
	Connect(ctx context.Context, instance string) (*gateway.QRCode, error)
}

type WhatsAppUsecase interface {
	GetConnectionState(ctx context.Context, organizationID uuid.UUID) (*dto.WhatsAppStateResponse, error)
	GetQRCode(ctx context.Context, organizationID uuid.UUID) (*dto.WhatsAppQRCodeResponse, error)
}

type whatsAppUsecase struct {
	db        *gorm.DB
	log       *logrus.Logger
	orgRepo   repository.OrganizationRepository
	gateway   WhatsAppGateway
	pollGuard *service.PollGuard
}

func NewWhatsAppUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	orgRepo repository.OrganizationRepository,
	gatewayClient WhatsAppGateway,
	pollGuard *service.PollGuard,
) WhatsAppUsecase {
	return &whatsAppUsecase{
		db:        db,
		log:       log,
		orgRepo:   orgRepo,
		gateway:   gatewayClient,
		pollGuard: pollGuard,
	}
}

// GetConnectionState polls the session state through the guard; key "state:<instance>"
func (u *whatsAppUsecase) GetConnectionState(ctx context.Context, organizationID uuid.UUID) (*dto.WhatsAppStateResponse, error) {
	instance, err := u.instanceOf(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	result, err := u.pollGuard.Do(ctx, "state:"+instance, func(ctx context.Context) (any, error) {
		return u.gateway.ConnectionState(ctx, instance)
	})
	if err != nil {
		u.logGatewayError("connection state", instance, err)
		return nil, err
	}

	state := result.(*gateway.ConnectionState)
	return &dto.WhatsAppStateResponse{Instance: state.Instance, State: state.State}, nil
}

// GetQRCode requests a pairing code through the guard; key "qrcode:<instance>"
func (u *whatsAppUsecase) GetQRCode(ctx context.Context, organizationID uuid.UUID) (*dto.WhatsAppQRCodeResponse, error) {
	instance, err := u.instanceOf(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	result, err := u.pollGuard.Do(ctx, "qrcode:"+instance, func(ctx context.Context) (any, error) {
		return u.gateway.Connect(ctx, instance)
	})
	if err != nil {
		u.logGatewayError("qr code", instance, err)
		return nil, err
	}

	qr := result.(*gateway.QRCode)
	return &dto.WhatsAppQRCodeResponse{
		Instance:    qr.Instance,
		PairingCode: qr.PairingCode,
		Code:        qr.Code,
		Base64:      qr.Base64,
	}, nil
}

func (u *whatsAppUsecase) instanceOf(ctx context.Context, organizationID uuid.UUID) (string, error) {
	organization, err := u.orgRepo.FindByID(ctx, u.db, organizationID)
	if err != nil {
		u.log.Warnf("Failed to find organization %s: %+v", organizationID, err)
		return "", err
	}
	if organization == nil {
		return "", ErrOrganizationNotFound
	}
	if organization.WhatsAppInstance == "" {
		return "", ErrWhatsAppNotConfigured
	}
	return organization.WhatsAppInstance, nil
}

func (u *whatsAppUsecase) logGatewayError(what, instance string, err error) {
	var rejection *service.PollRejection
	if errors.As(err, &rejection) {
		u.log.Debugf("Gateway %s poll for %s rejected: %v", what, instance, err)
		return
	}
	u.log.Warnf("Failed to fetch gateway %s for %s: %+v", what, instance, err)
}

