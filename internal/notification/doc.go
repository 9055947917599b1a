// Package notification は新聞登録に連動する通知パイプラインを提供する。
//
// 端末のプッシュトークン登録、国別の購読管理、新聞登録時の通知レコード生成、
// 通知一覧の取得と既読管理を行う。実際のプッシュ配信は Deliverer の背後に隠蔽され、
// 現在の実装はログ出力のみを行う。
package notification
