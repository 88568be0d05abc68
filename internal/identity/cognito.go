package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cogtypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/google/uuid"

	appconfig "github.com/thinkbeforeclick/platform/internal/config"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
)

// CognitoProvider implements Provider against a Cognito user pool using
// admin (server-side) auth flows.
type CognitoProvider struct {
	client *cognitoidentityprovider.Client
	cfg    appconfig.IdentityConfig
}

// NewCognitoProvider builds a provider in the pool's own region, which may
// differ from the rest of the deployment.
func NewCognitoProvider(ctx context.Context, cfg appconfig.IdentityConfig) (*CognitoProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.PoolRegion()),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for identity provider: %w", err)
	}
	return &CognitoProvider{
		client: cognitoidentityprovider.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

// NewCognitoProviderWithClient wraps an existing Cognito client.
func NewCognitoProviderWithClient(client *cognitoidentityprovider.Client, cfg appconfig.IdentityConfig) *CognitoProvider {
	return &CognitoProvider{client: client, cfg: cfg}
}

// Authenticate runs the admin no-SRP auth flow and returns the user's
// profile attributes. Enterprise logins arrive with the admin username,
// which is resolved to the pool entry carrying it as a custom attribute.
func (p *CognitoProvider) Authenticate(ctx context.Context, username, password, userType string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
	defer cancel()

	loginName := username
	if userType == TypeEnterprise {
		email, err := p.resolveAdminUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		loginName = email
	}

	_, err := p.client.AdminInitiateAuth(ctx, &cognitoidentityprovider.AdminInitiateAuthInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		ClientId:   aws.String(p.cfg.ClientID),
		AuthFlow:   cogtypes.AuthFlowTypeAdminNoSrpAuth,
		AuthParameters: map[string]string{
			"USERNAME": loginName,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, mapAuthError(err)
	}

	out, err := p.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(loginName),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching profile after login: %w", err)
	}

	attrs := attrMap(out.UserAttributes)
	profile := &Profile{
		Username:         orDefault(attrs["email"], loginName),
		Email:            orDefault(attrs["email"], loginName),
		UserType:         orDefault(attrs["custom:user_type"], TypeIndividual),
		Role:             orDefault(attrs["custom:role"], "member"),
		UserStatus:       string(out.UserStatus),
		AdminUsername:    attrs["custom:admin_username"],
		OrganizationType: attrs["custom:organization_type"],
		OriginalUsername: username,
	}
	return profile, nil
}

// resolveAdminUsername walks the pool looking for the user whose
// custom:admin_username attribute matches. Admin usernames are not a pool
// alias, so this is a paginated attribute scan.
func (p *CognitoProvider) resolveAdminUsername(ctx context.Context, adminUsername string) (string, error) {
	paginator := cognitoidentityprovider.NewListUsersPaginator(p.client, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("listing pool users: %w", err)
		}
		for _, user := range page.Users {
			attrs := attrMap(user.Attributes)
			if strings.TrimSpace(attrs["custom:admin_username"]) != adminUsername {
				continue
			}
			email := strings.TrimSpace(attrs["email"])
			if email == "" {
				return "", fmt.Errorf("%w: enterprise user %s has no email",
					ErrUserNotFound, aws.ToString(user.Username))
			}
			return email, nil
		}
	}
	return "", ErrUserNotFound
}

// SignUp registers a self-service user with the pool app client.
func (p *CognitoProvider) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
	defer cancel()

	attrs := []cogtypes.AttributeType{
		{Name: aws.String("email"), Value: aws.String(in.Email)},
		{Name: aws.String("preferred_username"), Value: aws.String(in.Username)},
	}

	switch in.UserType {
	case TypeEnterprise:
		attrs = append(attrs,
			cogtypes.AttributeType{Name: aws.String("custom:user_type"), Value: aws.String(TypeEnterprise)},
			cogtypes.AttributeType{Name: aws.String("custom:organization_type"), Value: aws.String(orDefault(in.OrganizationType, "general"))},
			cogtypes.AttributeType{Name: aws.String("custom:admin_username"), Value: aws.String(orDefault(in.AdminUsername, in.Username))},
			cogtypes.AttributeType{Name: aws.String("custom:role"), Value: aws.String(orDefault(in.Role, "admin"))},
		)
	default:
		attrs = append(attrs,
			cogtypes.AttributeType{Name: aws.String("custom:user_type"), Value: aws.String(TypeIndividual)},
			cogtypes.AttributeType{Name: aws.String("custom:role"), Value: aws.String("member")},
		)
	}

	out, err := p.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:       aws.String(p.cfg.ClientID),
		Username:       aws.String(in.Username),
		Password:       aws.String(in.Password),
		UserAttributes: attrs,
	})
	if err != nil {
		var exists *cogtypes.UsernameExistsException
		var invalid *cogtypes.InvalidParameterException
		if errors.As(err, &exists) {
			return "", ErrDuplicate
		}
		if errors.As(err, &invalid) && strings.Contains(strings.ToLower(invalid.ErrorMessage()), "email") {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("signing up %s: %w", in.Username, err)
	}

	return aws.ToString(out.UserSub), nil
}

// EnsureUser finds the pool user holding email, creating a suppressed-invite
// user with the platform default password when none exists. Creation races
// surface as AliasExistsException and resolve to the winner's entry.
func (p *CognitoProvider) EnsureUser(ctx context.Context, email string) (*EnsureResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
	defer cancel()

	existing, err := p.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &EnsureResult{PoolUser: *existing, Existing: true}, nil
	}

	username := NewUsername()
	_, err = p.client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
		UserAttributes: []cogtypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
		MessageAction: cogtypes.MessageActionTypeSuppress,
	})
	if err != nil {
		var alias *cogtypes.AliasExistsException
		var exists *cogtypes.UsernameExistsException
		if errors.As(err, &alias) || errors.As(err, &exists) {
			winner, ferr := p.findByEmail(ctx, email)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return &EnsureResult{PoolUser: *winner, Existing: true}, nil
			}
		}
		return nil, fmt.Errorf("creating pool user for %s: %w", logger.RedactEmail(email), err)
	}

	_, err = p.client.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
		Password:   aws.String(p.cfg.DefaultPassword),
		Permanent:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("setting password for pool user %s: %w", username, err)
	}

	created, err := p.fetchUser(ctx, username, email)
	if err != nil {
		return nil, err
	}
	return &EnsureResult{PoolUser: *created, Existing: false}, nil
}

// findByEmail resolves a pool user by the email alias. Returns (nil, nil)
// when the email is unknown.
func (p *CognitoProvider) findByEmail(ctx context.Context, email string) (*PoolUser, error) {
	out, err := p.client.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Filter:     aws.String(fmt.Sprintf("email = %q", email)),
		Limit:      aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("listing users by email: %w", err)
	}
	if len(out.Users) == 0 {
		return nil, nil
	}
	user := out.Users[0]
	attrs := attrMap(user.Attributes)
	return &PoolUser{
		Username: aws.ToString(user.Username),
		Sub:      attrs["sub"],
		Email:    orDefault(attrs["email"], email),
	}, nil
}

func (p *CognitoProvider) fetchUser(ctx context.Context, username, email string) (*PoolUser, error) {
	out, err := p.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching pool user %s: %w", username, err)
	}
	attrs := attrMap(out.UserAttributes)
	return &PoolUser{
		Username: aws.ToString(out.Username),
		Sub:      attrs["sub"],
		Email:    orDefault(attrs["email"], email),
	}, nil
}

func attrMap(attrs []cogtypes.AttributeType) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	return m
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func mapAuthError(err error) error {
	var notAuth *cogtypes.NotAuthorizedException
	var notFound *cogtypes.UserNotFoundException
	var notConfirmed *cogtypes.UserNotConfirmedException
	switch {
	case errors.As(err, &notAuth):
		return ErrBadCredentials
	case errors.As(err, &notFound):
		return ErrUserNotFound
	case errors.As(err, &notConfirmed):
		return ErrNotConfirmed
	}
	return fmt.Errorf("authenticating: %w", err)
}

// NewUsername mints an opaque pool username.
func NewUsername() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
