package domain

import "errors"

// User-facing messages. The client renders these verbatim, so they must stay
// byte-identical to the strings the mobile app was shipped against.
const (
	MsgUserNotFound         = "유저정보가 없습니다."
	MsgAlreadySubscribed    = "이미 구독중입니다."
	MsgProductNotFound      = "존재하지 않는 구독 상품입니다."
	MsgReceiptInvalid       = "결제가 정상적으로 처리되지 않았습니다."
	MsgEventMembership      = "이벤트 멤버십이 활성화되어 있습니다."
	MsgNoActiveSubscription = "활성화중인 구독정보가 없습니다."
	MsgSubscriptionActive   = "활성화중인 구독정보를 조회하였습니다."
	MsgSubscriptionExpired  = "구독 기간이 만료되었습니다."

	MsgRefundUserNotFound   = "유저 정보가 없습니다."
	MsgNoRefundableSub      = "환불 가능한 구독 정보가 없습니다."
	MsgRefundIneligibleUsed = "구독 후 서비스 이용 고객으로 구독 환불 불가 대상입니다."
	MsgRefundable           = "환불이 가능한 구독입니다."
	MsgRefundSubMissing     = "구독 정보를 찾을 수 없습니다."
	MsgRefundComplete       = "구독 환불을 완료하였습니다."

	// Generic fallback for unexpected/infrastructure failures. The detail is
	// only logged and recorded in the failure audit trail.
	MsgTryAgain = "결제 처리 중 오류가 발생했습니다. 다시 시도해주세요."
)

// UserMessage maps a business-rule error to the message the client displays.
// Unknown errors collapse to the generic retry message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return MsgUserNotFound
	case errors.Is(err, ErrAlreadySubscribed):
		return MsgAlreadySubscribed
	case errors.Is(err, ErrProductNotFound):
		return MsgProductNotFound
	case errors.Is(err, ErrReceiptInvalid):
		return MsgReceiptInvalid
	case errors.Is(err, ErrSubscriptionNotFound):
		return MsgRefundSubMissing
	case errors.Is(err, ErrRefundIneligible):
		return MsgRefundIneligibleUsed
	default:
		return MsgTryAgain
	}
}
