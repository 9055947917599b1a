// Package event は新聞の登録・更新・削除を表すドメインイベントを定義する。
package event
