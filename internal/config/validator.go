package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// 텔레그램 봇 토큰 검증을 위한 정규식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
	telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)
)

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 Go 필드명 대신 설정 파일의 JSON 키 이름을 보여줍니다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("telegram_bot_token", validateTelegramBotToken); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'telegram_bot_token' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

// validateTelegramBotToken 입력된 문자열이 유효한 텔레그램 봇 토큰 형식인지 검증합니다.
func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// checkStruct 구조체의 유효성을 검사하고, 사용자 친화적인 에러 메시지를 반환합니다.
func checkStruct(v *validator.Validate, s any, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	// 첫 번째 에러만 상세히 보고
	fe := validationErrors[0]
	switch fe.Tag() {
	case "required", "required_if":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 %s 값은 필수입니다", contextName, fe.Field()))
	case "oneof":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 %s 값('%v')은 다음 중 하나여야 합니다: %s", contextName, fe.Field(), fe.Value(), fe.Param()))
	case "url":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 %s 값('%v')이 올바른 URL이 아닙니다", contextName, fe.Field(), fe.Value()))
	case "file":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 %s 파일을 찾을 수 없습니다: '%v'", contextName, fe.Field(), fe.Value()))
	case "telegram_bot_token":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 봇 토큰(%s) 형식이 올바르지 않습니다", contextName, fe.Field()))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s)", contextName, fe.Field(), fe.Tag()))
}

// checkUniqueField 슬라이스 내의 특정 필드 값이 유일한지 검사합니다.
func checkUniqueField(v *validator.Validate, data any, fieldName, contextName string) error {
	if err := v.Var(data, "unique="+fieldName); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("중복된 %s ID가 존재합니다", contextName))
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유일성 검증에 실패했습니다", contextName))
	}
	return nil
}
