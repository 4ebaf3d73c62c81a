package usecase

import (
	"context"
	"log/slog"

	"identity-hook/internal/domain"
)

// RegisterAccount orchestrates the registration of a newly created account:
// classification, external provisioning, and claims assembly.
type RegisterAccount struct {
	classifier  domain.Classifier
	provisioner domain.UserProvisioner
	logger      *slog.Logger
}

// NewRegisterAccount creates a new RegisterAccount usecase.
func NewRegisterAccount(classifier domain.Classifier, p domain.UserProvisioner, l *slog.Logger) *RegisterAccount {
	return &RegisterAccount{classifier: classifier, provisioner: p, logger: l}
}

// Execute provisions the account's external user and returns the custom
// claims the identity platform attaches to it. Conflicts pass through
// unchanged; any other failure is logged in full and flattened to
// domain.ErrInternal, which is the only sanitization boundary. Nothing is
// retried.
func (uc *RegisterAccount) Execute(ctx context.Context, account *domain.Account) (*domain.CustomClaims, error) {
	category := uc.classifier.Classify(account.TenantID)

	uc.logger.InfoContext(ctx, "classified account",
		"uid", account.UID,
		"tenant_id", account.TenantID,
		"user_type", category)

	user, err := uc.provisioner.CreateUser(ctx, account, category)
	if err != nil {
		if domain.IsConflict(err) {
			return nil, err
		}

		uc.logger.ErrorContext(ctx, "user provisioning failed",
			"uid", account.UID,
			"error", err)
		return nil, domain.ErrInternal
	}

	claims := &domain.CustomClaims{
		UserType:          category,
		ApplicationUserID: user.ID,
		Roles:             domain.RolesFor(category),
	}

	uc.logger.InfoContext(ctx, "assembled custom claims",
		"uid", account.UID,
		"application_user_id", claims.ApplicationUserID,
		"user_type", claims.UserType)

	return claims, nil
}
