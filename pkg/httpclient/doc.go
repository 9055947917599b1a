// Package httpclient はNavigator APIを呼び出すためのJSON HTTPクライアントを提供する。
//
// 管理用ツール（cmd/seed など）がAPIサーバーへログインし、
// 取得したアクセストークンを付与してリクエストを送る際に使用する。
package httpclient
