// Package messages holds the user-facing reply strings.
package messages

const (
	// ErrUserErrorProcessing is the generic reply when an interaction
	// fails unexpectedly.
	ErrUserErrorProcessing = "İşleminiz gerçekleştirilirken bir hata oluştu. Lütfen tekrar deneyin."

	// AdminOnly is the reply to a non-administrator using an admin command.
	AdminOnly = "Bu komutu kullanmak için yönetici yetkisine sahip olmalısınız!"

	// NotATicketChannel is the reply when a ticket control is used outside
	// a ticket channel.
	NotATicketChannel = "Bu kanal bir destek talebi kanalı değil!"

	// TicketAlreadyClosing is the reply when a control is used on a ticket
	// that is already being closed.
	TicketAlreadyClosing = "Bu talep zaten kapatılıyor!"

	// NoPermission is the reply to an actor without moderation rights.
	NoPermission = "Bu işlemi yapmak için yetkiniz yok!"

	// ArchiveNotConfigured is the reply when a close is attempted before
	// an archive category was configured.
	ArchiveNotConfigured = "Arşiv kategorisi ayarlanmamış! Bir yönetici `/arşivkategorisi` komutu ile ayarlayana kadar talepler kapatılamaz."

	// TicketCreated is the reply after a ticket channel was opened. It is
	// formatted with the channel mention.
	TicketCreated = "Talebiniz oluşturuldu! %s kanalını kontrol edin."

	// TicketCloseStarted is the acknowledgement after a close was accepted.
	TicketCloseStarted = "Talep kapatma işlemi başlatıldı."

	// TicketFrozen and TicketUnfrozen acknowledge a freeze toggle.
	TicketFrozen   = "Talep donduruldu."
	TicketUnfrozen = "Talep tekrar açıldı."

	// UnknownCategory is the reply when a ticket is requested for a
	// category that does not exist.
	UnknownCategory = "Geçersiz kategori seçimi!"

	// SetupArchivePrompt asks the administrator for the archive category.
	SetupArchivePrompt = "Lütfen kapatılan taleplerin taşınacağı arşiv kategorisinin ID bilgisini bu kanala yazın."

	// SetupArchiveInvalid rejects a non-numeric archive category input.
	SetupArchiveInvalid = "Lütfen geçerli bir kategori ID'si girin (sadece sayı)."

	// SetupArchiveNotFound rejects an archive category that does not
	// resolve to a category channel in this guild.
	SetupArchiveNotFound = "Bu ID ile bir kategori bulunamadı. Lütfen sunucudaki bir kategorinin ID bilgisini girin."

	// SetupSessionExpired is the reply when a wizard control is used after
	// the session timed out or was never started.
	SetupSessionExpired = "Kurulum oturumu bulunamadı veya zaman aşımına uğradı. `/kurulum` komutu ile yeniden başlayın."

	// SetupStepStale is the reply when a wizard control from an already
	// completed step is used.
	SetupStepStale = "Bu kurulum adımı artık geçerli değil."

	// SetupFinalizing replaces the wizard controls while setup completes.
	SetupFinalizing = "Kurulum tamamlanıyor..."

	// SetupLogChannelReminder is posted after setup finishes.
	SetupLogChannelReminder = "Talep kayıtlarının gönderileceği kanalı ayarlamak için `/logkanal` komutunu kullanabilirsiniz."

	// StaffRoleSet, LogChannelSet, ArchiveCategorySet and SupportTeamSet
	// acknowledge the direct configuration commands. They are formatted
	// with the relevant mention.
	StaffRoleSet       = "Yetkili rolü %s olarak ayarlandı."
	LogChannelSet      = "Talep kayıt kanalı %s olarak ayarlandı."
	ArchiveCategorySet = "Arşiv kategorisi **%s** olarak ayarlandı."
	SupportTeamSet     = "**%s** kategorisi için destek ekibi %s olarak ayarlandı."

	// LogChannelNotText rejects a non-text channel as the log channel.
	LogChannelNotText = "Kayıt kanalı bir metin kanalı olmalıdır!"
)
