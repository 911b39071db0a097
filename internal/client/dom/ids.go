package dom

// Element ids the client reads or writes.
const (
	UserModal         = "userModal"
	ContentWrapper    = "content-wrapper"
	UserInfo          = "user-info"
	BlockLogin        = "block-login"
	ButtonLogout      = "button-logout"
	BlockUser         = "block-user"
	UserFileProgress  = "form-user-file-progress"
	VideoFileProgress = "form-video-file-progress"
	UserImage         = "form-user-image"
	UserImageHidden   = "form-user-image-hidden"
	VideoSrc          = "form-video-src"
)

// Template source ids.
const (
	FormUserTemplate      = "form-user-template"
	UserInfoTemplate      = "user-info-template"
	BlockUserTemplate     = "block-user-template"
	BlockUserInfoTemplate = "block-user-info-template"
)

// RequiredElements lists every element id the page must provide.
var RequiredElements = []string{
	UserModal, ContentWrapper, UserInfo, BlockLogin, ButtonLogout, BlockUser,
	UserFileProgress, VideoFileProgress, UserImage, UserImageHidden, VideoSrc,
}

// RequiredTemplates lists every template source id the page must provide.
var RequiredTemplates = []string{
	FormUserTemplate, UserInfoTemplate, BlockUserTemplate, BlockUserInfoTemplate,
}

// hiddenOnLoad are the elements the page starts with display: none.
var hiddenOnLoad = map[string]bool{
	ButtonLogout:      true,
	BlockUser:         true,
	UserFileProgress:  true,
	VideoFileProgress: true,
}
