// Package auth は管理者のログインとアクセストークンの発行を提供する。
//
// 利用者は全員が管理者として扱われる。ユーザーが1件も登録されていない状態で
// 設定済みの初期管理者の資格情報でログインした場合、その管理者を作成する。
package auth
