package service

import (
	"context"
	"errors"
	"fmt"

	"budgetbite/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrIdentityIncomplete 身份提供方未返回必要字段
var ErrIdentityIncomplete = errors.New("未获取到用户身份信息")

// Identity 第三方登录返回的用户身份
type Identity struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// IdentityProvider 第三方登录
type IdentityProvider interface {
	// AuthCodeURL 生成授权跳转地址
	AuthCodeURL(state string) string
	// Resolve 用授权码换取用户身份
	Resolve(ctx context.Context, code string) (*Identity, error)
}

// GoogleIdentity Google OAuth 登录
type GoogleIdentity struct {
	oauth      *oauth2.Config
	apiOptions []option.ClientOption
}

// NewGoogleIdentity 根据配置创建 Google 登录
func NewGoogleIdentity(cfg config.OAuthConfig, opts ...option.ClientOption) *GoogleIdentity {
	return &GoogleIdentity{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		apiOptions: opts,
	}
}

// AuthCodeURL 生成授权跳转地址
func (g *GoogleIdentity) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Resolve 用授权码换 token，再调用 userinfo 接口
func (g *GoogleIdentity) Resolve(ctx context.Context, code string) (*Identity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("授权码换取 token 失败: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(g.oauth.Client(ctx, tok))}, g.apiOptions...)
	svc, err := googleoauth.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 userinfo 客户端失败: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}
	if info.Id == "" || info.Email == "" {
		return nil, ErrIdentityIncomplete
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &Identity{
		Subject: info.Id,
		Name:    name,
		Email:   info.Email,
		Picture: info.Picture,
	}, nil
}
