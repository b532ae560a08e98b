package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/constants"

	"github.com/mojocn/base64Captcha"
)

func TestCaptchaServiceSceneSwitches(t *testing.T) {
	disabled := NewCaptchaService(config.CaptchaConfig{Provider: "none", Scenes: config.CaptchaSceneConfig{Login: true}})
	if disabled.SceneEnabled(constants.CaptchaSceneLogin) {
		t.Fatalf("provider none should disable every scene")
	}
	if err := disabled.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene should pass, got %v", err)
	}
	if _, err := disabled.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("generate without image provider want ErrCaptchaConfigInvalid, got %v", err)
	}

	svc := NewCaptchaService(config.CaptchaConfig{Provider: " Image ", Scenes: config.CaptchaSceneConfig{Inquiry: true}})
	setting := svc.PublicSetting()
	if setting.Provider != constants.CaptchaProviderImage {
		t.Fatalf("provider should normalize to image, got %q", setting.Provider)
	}
	if setting.Scenes[constants.CaptchaSceneLogin] || !setting.Scenes[constants.CaptchaSceneInquiry] {
		t.Fatalf("unexpected scenes: %v", setting.Scenes)
	}
}

func TestCaptchaServiceVerifyImage(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Provider: "image", Scenes: config.CaptchaSceneConfig{Login: true}})
	store := base64Captcha.NewMemoryStore(100, time.Minute)
	svc.useStore(store)
	if err := store.Set("cap-1", "k7Qx2"); err != nil {
		t.Fatalf("seed captcha failed: %v", err)
	}

	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: "cap-1"}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("missing code want ErrCaptchaRequired, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: "cap-1", CaptchaCode: "wrong"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("wrong code want ErrCaptchaInvalid, got %v", err)
	}

	if err := store.Set("cap-2", "k7Qx2"); err != nil {
		t.Fatalf("seed captcha failed: %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: " cap-2 ", CaptchaCode: " k7Qx2 "}); err != nil {
		t.Fatalf("correct code should pass, got %v", err)
	}
	// 校验后即失效
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: "cap-2", CaptchaCode: "k7Qx2"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("reused captcha want ErrCaptchaInvalid, got %v", err)
	}
}

func TestCaptchaServiceGenerateImageChallenge(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Provider: "image"})
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate challenge failed: %v", err)
	}
	if challenge.CaptchaID == "" || !strings.HasPrefix(challenge.ImageBase64, "data:image/") {
		t.Fatalf("unexpected challenge: id=%q image=%.30q", challenge.CaptchaID, challenge.ImageBase64)
	}
}
