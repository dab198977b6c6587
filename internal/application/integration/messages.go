package integration

import (
	"fmt"

	"github.com/coupang-catalog/backend/internal/domain/integration"
)

// actionMessages are the user-facing status texts of one action
type actionMessages struct {
	loading  string
	success  string
	fallback string
}

var messages = map[integration.Action]actionMessages{
	integration.ActionSetupWorkflow: {
		loading:  "n8n 워크플로우 설정 중...",
		success:  "n8n 워크플로우가 성공적으로 설정되었습니다.",
		fallback: "n8n 설정 실패",
	},
	integration.ActionSendData: {
		loading:  "데이터 전송 중...",
		success:  "데이터가 성공적으로 전송되었습니다.",
		fallback: "데이터 전송 실패",
	},
	integration.ActionSendNotification: {
		loading:  "알림 전송 중...",
		success:  "알림이 성공적으로 전송되었습니다.",
		fallback: "알림 전송 실패",
	},
	integration.ActionUploadToNotion: {
		loading:  "Notion에 업로드 중...",
		success:  "Notion에 상품이 성공적으로 업로드되었습니다.",
		fallback: "Notion 업로드 실패",
	},
	integration.ActionCreateNotionDatabase: {
		loading:  "Notion 데이터베이스 생성 중...",
		success:  "Notion 데이터베이스가 성공적으로 생성되었습니다.",
		fallback: "Notion 데이터베이스 생성 실패",
	},
}

// Validation messages
const (
	msgWebhookURLRequired    = "n8n 웹훅 URL이 필요합니다."
	msgProductRequired       = "상품 데이터가 필요합니다."
	msgExecutionRequired     = "실행 ID와 API 키가 필요합니다."
	msgNotionDatabaseMissing = "Notion API 키와 데이터베이스 ID가 필요합니다."
	msgNotionParentMissing   = "Notion API 키와 부모 페이지 ID가 필요합니다."
)

func loadingMessage(a integration.Action) string {
	return messages[a].loading
}

func successMessage(a integration.Action) string {
	return messages[a].success
}

// errorMessage renders "오류: <reason>"; the reason is never empty
func errorMessage(a integration.Action, err error) string {
	return fmt.Sprintf("오류: %s", integration.Reason(err, messages[a].fallback))
}
