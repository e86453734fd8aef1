package notifier

import (
	"fmt"

	"shiftserver/collections"
)

// Metadata type values carried in the push payload's data map.
const (
	typeRequestCreated  = "request_created"
	typeRequestApproved = "request_approved"
	typeRequestRejected = "request_rejected"
)

// requestLabel gives the app copy for a request type, used to build titles and
// bodies. The bool reports whether the type is known.
func requestLabel(requestType string) (string, bool) {
	switch requestType {
	case collections.TypeSpecificDay:
		return "休み希望", true
	case collections.TypeWeekday:
		return "曜日休み", true
	case collections.TypeShiftType:
		return "シフト制限", true
	case collections.TypeMaxShiftsPerMonth:
		return "月間勤務数上限", true
	default:
		return "", false
	}
}

// createdTemplate composes the title/body pair for a newly created request.
// staffName is the requester's display name. The pair is a pure function of
// (requestType, isDelete); maxShiftsPerMonth has no deletion variant.
func createdTemplate(requestType string, isDelete bool, staffName string) (title, body string, ok bool) {
	label, known := requestLabel(requestType)
	if !known {
		return "", "", false
	}
	if requestType == collections.TypeMaxShiftsPerMonth {
		return fmt.Sprintf("%sの申請", label),
			fmt.Sprintf("%sさんから%sが申請されました", staffName, label),
			true
	}
	if isDelete {
		return fmt.Sprintf("%sの取り消し申請", label),
			fmt.Sprintf("%sさんから%sの取り消しが申請されました", staffName, label),
			true
	}
	return fmt.Sprintf("新しい%s申請", label),
		fmt.Sprintf("%sさんから%sが申請されました", staffName, label),
		true
}

// statusTemplate composes the title/body pair for a request status change.
// Approval wording mirrors the creation templates per request type; rejection
// is a single generic pair across all types.
func statusTemplate(status, requestType string, isDelete bool) (title, body string, ok bool) {
	if status == collections.StatusRejected {
		return "申請が却下されました", "申請が却下されました。アプリで内容を確認してください", true
	}
	label, known := requestLabel(requestType)
	if !known {
		return "", "", false
	}
	if isDelete && requestType != collections.TypeMaxShiftsPerMonth {
		title = fmt.Sprintf("%sの取り消しが承認されました", label)
	} else {
		title = fmt.Sprintf("%sが承認されました", label)
	}
	return title, title + "。アプリで確認してください", true
}
