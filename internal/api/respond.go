package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huparfum-backend/internal/logger"
)

// Validation messages are customer-facing and shipped in Arabic, the
// storefront language.
const (
	msgInvalidBody        = "البيانات المرسلة غير صالحة"
	msgMissingStatus      = "الحالة مطلوبة"
	msgInvalidStatus      = "قيمة الحالة غير صالحة"
	msgOrderNotFound      = "الطلب غير موجود"
	msgProductNotFound    = "المنتج غير موجود"
	msgUserNotFound       = "المستخدم غير موجود"
	msgSettingNotFound    = "الإعداد غير موجود"
	msgFlagNotFound       = "الخاصية غير موجودة"
	msgInvalidQuantity    = "الكمية غير صالحة"
	msgInsufficientStock  = "الكمية المطلوبة غير متوفرة في المخزون"
	msgEmailTaken         = "البريد الإلكتروني مستعمل من قبل"
	msgPhoneTaken         = "رقم الهاتف مستعمل من قبل"
	msgInvalidCredentials = "بيانات الدخول غير صحيحة"
	msgUnauthorized       = "غير مصرح"
	msgEmailNotVerified   = "يرجى تأكيد بريدك الإلكتروني أولاً"
	msgInvalidVerifyToken = "رابط التأكيد غير صالح أو منتهي الصلاحية"
	msgTooManyRequests    = "عدد كبير من الطلبات، حاول لاحقاً"
	msgServerError        = "حدث خطأ غير متوقع"
)

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFoundError(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
}

// internalError answers 500. The underlying message is echoed only
// outside production.
func (s *Server) internalError(c *gin.Context, err error) {
	logger.Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
	if s.cfg.Production() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
