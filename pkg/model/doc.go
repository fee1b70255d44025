// Package model はArcentraコンソールが扱うドメインの型を定義する。
//
// JSONのフィールド名はバックエンドに合わせている。
package model
